//go:build unix

package tree

import (
	"os"
	"syscall"
)

func identityOf(path string, fileInfo os.FileInfo) fileIdentity {
	status, ok := fileInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return fileIdentity{path: path}
	}
	return fileIdentity{device: uint64(status.Dev), inode: uint64(status.Ino)}
}
