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

// Package session implements the save transactions for markup: writing a
// marked-up copy of a document, writing markup back into the original
// document, and flattening annotations.
//
// Every transaction works on a private working copy.  The user's
// original is only touched at the very end, by a single call to
// [Storage.Replace].  If this fails for lack of permission, the result is
// written to a fallback directory instead.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/config"
	"seehuhn.de/go/markup/mutate"
	"seehuhn.de/go/markup/pdfdoc"
)

// Original is the [Result.Location] of a successful write-back.
const Original = "original"

// Renderer is implemented by viewers which keep a document open for
// display.  A renderer is released before a transaction starts, and is
// reopened when the transaction ends, whatever its outcome.
type Renderer interface {
	Release() error
	Reopen(path string) error
}

// Result describes a completed transaction.
type Result struct {
	// Location is where the result was written: the output path, the
	// string [Original], or the path of a fallback file.
	Location string

	// Report lists the outcome of every page.
	Report *mutate.Report

	// Message is a human-readable summary.
	Message string
}

// Coordinator runs save transactions, one at a time.
type Coordinator struct {
	// Storage gives access to original documents.
	// If nil, FileStorage is used.
	Storage Storage

	// Renderer, if set, is released before and reopened after every
	// transaction.
	Renderer Renderer

	// Config holds the settings.  If nil, config.Default() is used.
	Config *config.Config

	// Logger receives diagnostics.  If nil, slog.Default() is used.
	Logger *slog.Logger

	// Now is passed on to the page mutator.
	Now func() time.Time

	mu sync.Mutex
}

// ProduceNewFile writes a copy of the document at src, with the given
// markup added, to the file out.  The source document is not modified.
func (c *Coordinator) ProduceNewFile(ctx context.Context, src string, strokes markup.StrokesByPage, shapes markup.ShapesByPage, mode mutate.Mode, out string) (*Result, error) {
	return c.run(ctx, "produce", src, func(t *txn) (*Result, error) {
		doc, err := t.openFile(src)
		if err != nil {
			return nil, err
		}
		report := t.mutator(doc).Apply(mode, strokes, shapes)
		tmp, err := t.save(doc)
		if err != nil {
			return nil, err
		}
		if err := installFile(out, tmp); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrSave, out, err)
		}
		t.log.Info("file written", "path", out, "report", report.String())
		return &Result{
			Location: out,
			Report:   report,
			Message:  fmt.Sprintf("saved to %s (%s)", out, report),
		}, nil
	})
}

// SaveBackToOriginal writes the markup back into the document at the
// location original.  The working copy is made from the file src, or from
// the original itself if src is empty.  If bake is true, the markup is
// drawn into the page content; otherwise interactive annotations are
// added.
//
// If the original cannot be written for lack of permission, the result is
// stored in the fallback directory and Location gives the path of the new
// file.  Otherwise Location is [Original].
func (c *Coordinator) SaveBackToOriginal(ctx context.Context, original, src string, strokes markup.StrokesByPage, shapes markup.ShapesByPage, bake bool) (*Result, error) {
	view := src
	if view == "" {
		view = original
	}
	return c.run(ctx, "write-back", view, func(t *txn) (*Result, error) {
		var doc *pdfdoc.Document
		var err error
		if src != "" {
			doc, err = t.openFile(src)
		} else {
			doc, err = t.openOriginal(ctx, original)
		}
		if err != nil {
			return nil, err
		}

		mode := mutate.Interactive
		if bake {
			mode = mutate.Bake
		}
		report := t.mutator(doc).Apply(mode, strokes, shapes)
		tmp, err := t.save(doc)
		if err != nil {
			return nil, err
		}

		err = replaceFrom(ctx, c.storage(), original, tmp)
		switch {
		case err == nil:
			t.reopen = original
			t.log.Info("original replaced", "path", original, "report", report.String())
			return &Result{
				Location: Original,
				Report:   report,
				Message:  fmt.Sprintf("saved (%s)", report),
			}, nil
		case errors.Is(err, fs.ErrPermission):
			t.log.Info("original is read-only, using fallback", "path", original, "err", err)
		default:
			return nil, fmt.Errorf("%w %s: %w", ErrSave, original, err)
		}

		dst, err := fallbackPath(c.config().FallbackDir, original)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSave, err)
		}
		if err := installFile(dst, tmp); err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrSave, dst, err)
		}
		t.reopen = dst
		t.log.Info("file written", "path", dst, "report", report.String())
		return &Result{
			Location: dst,
			Report:   report,
			Message:  fmt.Sprintf("original is read-only, saved to %s (%s)", dst, report),
		}, nil
	})
}

// Flatten writes a copy of the document at src, with all annotations
// converted into page content, to the file out.
func (c *Coordinator) Flatten(ctx context.Context, src, out string) (*Result, error) {
	return c.ProduceNewFile(ctx, src, nil, nil, mutate.Flatten, out)
}

// run executes fn as one transaction.  The coordinator lock is held for
// the whole duration.  Cleanup functions registered by fn run on every
// exit path, and a panic in fn is converted into an error.
func (c *Coordinator) run(ctx context.Context, op, view string, fn func(*txn) (*Result, error)) (res *Result, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := &txn{
		c:      c,
		log:    c.logger().With("op", op),
		reopen: view,
	}
	if c.Renderer != nil {
		if err := c.Renderer.Release(); err != nil {
			t.log.Warn("cannot release renderer", "err", err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("%s: %w: %v", op, ErrInternal, r)
		}
		t.close()
		if c.Renderer != nil && t.reopen != "" {
			if reopenErr := c.Renderer.Reopen(t.reopen); reopenErr != nil {
				res = nil
				err = errors.Join(err, fmt.Errorf("%w %s: %w", ErrReopen, t.reopen, reopenErr))
			}
		}
		if err != nil {
			t.log.Error("transaction failed", "err", err)
		}
	}()

	t.log.Debug("transaction started")
	return fn(t)
}

// txn holds the state of one running transaction.
type txn struct {
	c       *Coordinator
	log     *slog.Logger
	cleanup []func()

	// reopen is the document the renderer shows after the transaction.
	reopen string
}

// onClose registers a cleanup function.  Cleanup functions run in reverse
// order of registration.
func (t *txn) onClose(fn func()) {
	t.cleanup = append(t.cleanup, fn)
}

func (t *txn) close() {
	for i := len(t.cleanup) - 1; i >= 0; i-- {
		t.cleanup[i]()
	}
	t.cleanup = nil
}

// openFile creates a working copy of the file at path and opens it.
func (t *txn) openFile(path string) (*pdfdoc.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()
	return t.workingCopy(f)
}

// openOriginal creates a working copy of the original document and opens
// it.
func (t *txn) openOriginal(ctx context.Context, loc string) (*pdfdoc.Document, error) {
	r, err := t.c.storage().Open(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, loc, err)
	}
	defer r.Close()
	return t.workingCopy(r)
}

func (t *txn) workingCopy(r io.Reader) (*pdfdoc.Document, error) {
	path, err := t.tempFile("markup-work-*.pdf")
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemp, err)
	}
	_, err = io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	t.onClose(func() { doc.Close() })
	doc.Compress = t.c.config().Compress
	t.log.Debug("working copy created", "path", path, "pages", doc.NumPages())
	return doc, nil
}

// save writes the document to a private temporary file and returns the
// path of this file.
func (t *txn) save(doc *pdfdoc.Document) (string, error) {
	path, err := t.tempFile("markup-out-*.pdf")
	if err != nil {
		return "", err
	}
	if err := doc.Save(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSave, err)
	}
	return path, nil
}

// tempFile creates an empty file in the temporary directory.  The file is
// removed when the transaction ends.
func (t *txn) tempFile(pattern string) (string, error) {
	f, err := os.CreateTemp(t.c.config().TempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemp, err)
	}
	path := f.Name()
	t.onClose(func() { os.Remove(path) })
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrTemp, err)
	}
	return path, nil
}

func (t *txn) mutator(doc *pdfdoc.Document) *mutate.Mutator {
	cfg := t.c.config()
	return &mutate.Mutator{
		Doc:            doc,
		Drift:          cfg.EffectiveDrift(),
		HighlightAlpha: cfg.HighlightAlpha,
		Author:         cfg.Author,
		Logger:         t.log,
		Now:            t.c.Now,
	}
}

// replaceFrom replaces the document at loc with the content of the file
// src.
func replaceFrom(ctx context.Context, s Storage, loc, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.Replace(ctx, loc, f)
}

// fallbackPath returns an unused file name of the form
// <stem>_annotated[_n].pdf inside dir, where stem is the base name of the
// original without extension.  If dir is empty, the directory "markup"
// inside [os.UserConfigDir] is used.
func fallbackPath(dir, original string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "markup")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	base := filepath.Base(original)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		stem = "document"
	}
	for n := 0; n < maxFallback; n++ {
		name := stem + "_annotated"
		if n > 0 {
			name += "_" + strconv.Itoa(n)
		}
		path := filepath.Join(dir, name+".pdf")
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			return path, nil
		}
	}
	return "", fmt.Errorf("no free file name for %q in %s", stem, dir)
}

func (c *Coordinator) storage() Storage {
	if c.Storage != nil {
		return c.Storage
	}
	return FileStorage{}
}

func (c *Coordinator) config() *config.Config {
	if c.Config != nil {
		return c.Config
	}
	return config.Default()
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// maxFallback limits the search for an unused fallback file name.
const maxFallback = 1000

var (
	// ErrOpen indicates that the source document could not be read.
	ErrOpen = errors.New("cannot open document")

	// ErrTemp indicates that no temporary file could be created.
	ErrTemp = errors.New("cannot create temporary file")

	// ErrSave indicates that the result could not be written.
	ErrSave = errors.New("cannot save document")

	// ErrReopen indicates that the renderer could not reopen its
	// document after the transaction.
	ErrReopen = errors.New("cannot reopen document")

	// ErrInternal indicates an unexpected failure inside the transaction.
	ErrInternal = errors.New("internal error")
)
