package tree

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidEncoding reports file content that is not valid UTF-8 text.
var ErrInvalidEncoding = errors.New("content is not valid UTF-8")

// errDirectoryMetrics reports a metric request against a directory.
var errDirectoryMetrics = errors.New("path is a directory")

const errorLineCacheFormat = "creating line count cache of size %d: %w"

// FileMetrics reads the size and line count of a single file.
type FileMetrics interface {
	Size(path string) (uint64, error)
	LineCount(path string) (uint64, error)
}

// fileIdentity names the file behind a path. On platforms that expose device
// and inode numbers the path is left empty, so symlink aliases and hard links
// of one file share an identity.
type fileIdentity struct {
	device uint64
	inode  uint64
	path   string
}

type lineCacheKey struct {
	identity         fileIdentity
	size             int64
	modificationTime int64
}

// DiskMetrics implements FileMetrics against the local filesystem.
// When created with a positive cache size it remembers line counts keyed by
// file identity, size and modification time, so a file reached through several
// paths is read once.
type DiskMetrics struct {
	lineCache *lru.Cache[lineCacheKey, uint64]
	cacheHits atomic.Uint64
}

// NewDiskMetrics returns DiskMetrics; cacheSize <= 0 disables caching.
func NewDiskMetrics(cacheSize int) (*DiskMetrics, error) {
	metrics := &DiskMetrics{}
	if cacheSize <= 0 {
		return metrics, nil
	}
	cache, cacheError := lru.New[lineCacheKey, uint64](cacheSize)
	if cacheError != nil {
		return nil, fmt.Errorf(errorLineCacheFormat, cacheSize, cacheError)
	}
	metrics.lineCache = cache
	return metrics, nil
}

// Size returns the on-disk byte length of the file at path.
func (metrics *DiskMetrics) Size(path string) (uint64, error) {
	fileInfo, statError := os.Stat(path)
	if statError != nil {
		return 0, statError
	}
	if fileInfo.IsDir() {
		return 0, newPathError(operationMeasure, path, nil, errDirectoryMetrics)
	}
	return uint64(fileInfo.Size()), nil
}

// LineCount reads the whole file at path and counts its text lines.
// #nosec G304
func (metrics *DiskMetrics) LineCount(path string) (uint64, error) {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return 0, openError
	}
	defer fileHandle.Close()

	fileInfo, statError := fileHandle.Stat()
	if statError != nil {
		return 0, statError
	}
	if fileInfo.IsDir() {
		return 0, newPathError(operationMeasure, path, nil, errDirectoryMetrics)
	}

	cacheKey := lineCacheKey{
		identity:         identityOf(path, fileInfo),
		size:             fileInfo.Size(),
		modificationTime: fileInfo.ModTime().UnixNano(),
	}
	if metrics.lineCache != nil {
		if cachedCount, found := metrics.lineCache.Get(cacheKey); found {
			metrics.cacheHits.Add(1)
			return cachedCount, nil
		}
	}

	content, readError := io.ReadAll(fileHandle)
	if readError != nil {
		return 0, readError
	}
	lineCount, countError := CountLines(content)
	if countError != nil {
		return 0, countError
	}
	if metrics.lineCache != nil {
		metrics.lineCache.Add(cacheKey, lineCount)
	}
	return lineCount, nil
}

// CacheHits reports how many line counts were served from the cache.
func (metrics *DiskMetrics) CacheHits() uint64 {
	return metrics.cacheHits.Load()
}

// CountLines counts text lines in content. Every newline terminates a line and a
// trailing unterminated fragment counts as one more line, so "a\nb" and "a\nb\n"
// both hold two lines and empty content holds none.
func CountLines(content []byte) (uint64, error) {
	if !utf8.Valid(content) {
		return 0, ErrInvalidEncoding
	}
	if len(content) == 0 {
		return 0, nil
	}
	lineCount := uint64(bytes.Count(content, []byte{'\n'}))
	if content[len(content)-1] != '\n' {
		lineCount++
	}
	return lineCount, nil
}

var _ FileMetrics = (*DiskMetrics)(nil)
