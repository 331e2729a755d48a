package pass

import (
	"errors"
	"io"
	"os"

	"github.com/baseline-eto/petfill/errs"
)

// Store provides the double buffer a pass sequence runs over: one raster is
// read while the next is written, and Promote makes the output the input of
// the following pass. A pass never reads and writes the same raster.
type Store interface {
	// OpenInput opens the current input raster and reports its size.
	OpenInput() (io.ReadCloser, int64, error)
	// CreateOutput creates or truncates the output raster.
	CreateOutput() (io.WriteCloser, error)
	// Promote replaces the input with the output written by the last pass.
	Promote() error
}

// FileStore is a Store over two file paths.
type FileStore struct {
	InputPath  string
	OutputPath string
}

var _ Store = FileStore{}

// OpenInput implements Store.
func (s FileStore) OpenInput() (io.ReadCloser, int64, error) {
	f, err := os.Open(s.InputPath)
	if err != nil {
		return nil, 0, errs.IO("open input", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, errs.IO("stat input", err)
	}

	return f, info.Size(), nil
}

// CreateOutput implements Store.
func (s FileStore) CreateOutput() (io.WriteCloser, error) {
	f, err := os.Create(s.OutputPath)
	if err != nil {
		return nil, errs.IO("create output", err)
	}

	return f, nil
}

// Promote removes the input file and renames the output onto it.
func (s FileStore) Promote() error {
	if err := os.Remove(s.InputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errs.IO("remove input", err)
	}
	if err := os.Rename(s.OutputPath, s.InputPath); err != nil {
		return errs.IO("promote output", err)
	}

	return nil
}
