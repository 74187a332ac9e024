package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// defaultPerm applies when the storage file does not exist yet.
const defaultPerm os.FileMode = 0o666

// fileWriter replaces a file in two steps: stage writes the new content next
// to the destination, commit renames it over the destination. A crash between
// the two leaves the destination untouched.
type fileWriter struct {
	rename func(oldpath, newpath string) error
}

func newFileWriter() *fileWriter {
	return &fileWriter{rename: os.Rename}
}

func (w *fileWriter) write(path string, data []byte) error {
	tmp, err := w.stage(path, data)
	if err != nil {
		return err
	}
	if err := w.commit(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// stage writes data to a synced temp file in path's directory and returns its
// name. The temp file carries the destination's mode.
func (w *fileWriter) stage(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	perm := defaultPerm
	if fi, err := os.Stat(path); err == nil {
		perm = fi.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	name := f.Name()
	fail := func(err error) (string, error) {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}

	if _, err := f.Write(data); err != nil {
		return fail(fmt.Errorf("write temp: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync temp: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(name, perm); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("chmod temp: %w", err)
	}
	return name, nil
}

func (w *fileWriter) commit(tmp, path string) error {
	if err := w.rename(tmp, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	syncDir(filepath.Dir(path))
	return nil
}

// syncDir makes the rename itself durable. Not every platform supports
// syncing a directory, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
