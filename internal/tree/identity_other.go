//go:build !unix

package tree

import "os"

func identityOf(path string, _ os.FileInfo) fileIdentity {
	return fileIdentity{path: path}
}
