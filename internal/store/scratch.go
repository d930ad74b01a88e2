package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

const scratchPattern = "ifc-*.ifc"

// WriteScratch copies r into a new file in dir and returns its path. The
// file is removed again if the copy fails.
func WriteScratch(dir string, r io.Reader) (path string, n int64, err error) {
	f, err := os.CreateTemp(dir, scratchPattern)
	if err != nil {
		return "", 0, fmt.Errorf("create scratch file: %w", err)
	}
	path = f.Name()

	n, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", n, fmt.Errorf("write scratch file: %w", err)
	}
	return path, n, nil
}

// RemoveScratch deletes a scratch file; a missing file is not an error.
func RemoveScratch(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
