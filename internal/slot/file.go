package slot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const tempFilePrefix = "scribble-tmp-"

// File stores the slot as <dir>/<name>.json.
type File struct {
	name string
	path string
}

// NewFile creates a file-backed slot inside dir. The directory is created on
// first save.
func NewFile(dir, name string) *File {
	if name == "" {
		name = DefaultName
	}
	return &File{
		name: name,
		path: filepath.Join(dir, name+".json"),
	}
}

func (f *File) Name() string { return f.name }

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Load() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", f.name, err)
	}
	return data, nil
}

func (f *File) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	return writeFileAtomic(f.path, data, 0600)
}

// writeFileAtomic writes to a temp file in the target directory, syncs it and
// renames it over filename so readers never observe a partial value.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", filename, err)
	}
	return nil
}
