// seehuhn.de/go/markup - ink and shape annotations for PDF files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// Storage gives access to the user's documents.  Locations are opaque
// strings; for [FileStorage] they are file system paths.
type Storage interface {
	// Open returns the current content of the document at loc.
	Open(ctx context.Context, loc string) (io.ReadCloser, error)

	// Replace overwrites the document at loc with the data from r.  If the
	// caller lacks write access to loc, the returned error must match
	// fs.ErrPermission.  If Replace fails, the original must be unchanged.
	Replace(ctx context.Context, loc string, r io.Reader) error
}

// FileStorage implements [Storage] on the local file system.
type FileStorage struct{}

// Open implements the [Storage] interface.
func (FileStorage) Open(_ context.Context, loc string) (io.ReadCloser, error) {
	return os.Open(loc)
}

// Replace implements the [Storage] interface.  The new content is written
// to a temporary file next to loc, which is then renamed over loc.
func (FileStorage) Replace(_ context.Context, loc string, r io.Reader) error {
	// check for write access before doing any work
	w, err := os.OpenFile(loc, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	w.Close()

	mode := os.FileMode(0o644)
	if fi, err := os.Stat(loc); err == nil {
		mode = fi.Mode().Perm()
	}
	return install(loc, r, mode)
}

// install atomically writes the data from r to the file at path.
func install(path string, r io.Reader, mode os.FileMode) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = io.Copy(f, r); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Chmod(mode); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// installFile copies the file src to dst, replacing dst atomically.
func installFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return install(dst, in, 0o644)
}
