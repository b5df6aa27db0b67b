// Package refstore loads the reference knowledge bases the pipelines join
// against. Tables are read eagerly from delimited text on every call and
// never cached, so reference updates on disk are visible to the next run.
package refstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bioremcore/pkg/table"
)

// DefaultSeparator is the field separator reference tables ship with.
const DefaultSeparator = ';'

// NotFoundError reports a reference path that does not exist.
type NotFoundError struct {
	Path string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("refstore: reference %q not found", e.Path)
}

// UnsupportedFormatError reports a reference in a format the loader
// cannot read.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("refstore: unsupported reference format %q (%s)", e.Ext, e.Path)
}

// LoadError wraps read or parse failures for an existing, supported path.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("refstore: load %q: %v", e.Path, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// Load eagerly reads the delimited reference table at path. Only .csv is
// supported; the extension check is case-insensitive.
func Load(path string, sep rune) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NotFoundError{Path: path}
		}
		return nil, LoadError{Path: path, Err: err}
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return nil, UnsupportedFormatError{Path: path, Ext: ext}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadError{Path: path, Err: err}
	}
	defer f.Close()
	tab, err := table.ReadDelimited(f, sep)
	if err != nil {
		return nil, LoadError{Path: path, Err: err}
	}
	return tab, nil
}
