package clip

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Source is a byte-bearing input file.
type Source interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// FileSource reads from a path on disk.
type FileSource string

func (f FileSource) Name() string { return filepath.Base(string(f)) }

func (f FileSource) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// BytesSource serves an in-memory buffer.
type BytesSource struct {
	Filename string
	Data     []byte
}

func (b BytesSource) Name() string { return b.Filename }

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.Data)), nil
}
