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

// Package mutate applies ink and shape markup to the pages of a PDF
// document, and flattens existing annotations into the page content.
//
// Pages are processed one at a time.  Every page ends in one of three
// states: [Done] if the page was changed, [Skipped] if there was nothing
// to do, and [Failed] if an error occurred.  A failure on one page never
// stops the processing of other pages.
package mutate

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/geometry"
	"seehuhn.de/go/markup/pdfdoc"
)

// Mode selects how markup is written into a document.
type Mode int

const (
	// Interactive adds one ink annotation per stroke or shape.  The
	// annotations remain editable in PDF viewers.
	Interactive Mode = iota

	// Bake draws all strokes and shapes directly into the page content.
	Bake

	// Flatten converts existing annotations into page content and removes
	// the annotation objects.  Strokes and shapes are ignored.
	Flatten
)

func (m Mode) String() string {
	switch m {
	case Interactive:
		return "interactive"
	case Bake:
		return "bake"
	case Flatten:
		return "flatten"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name, as returned by [Mode.String], into a
// Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Interactive, Bake, Flatten} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Status is the outcome of processing a single page.
type Status int

// These are the possible page outcomes.
const (
	Idle Status = iota
	Done
	Skipped
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Done:
		return "done"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// PageOutcome describes the result of processing one page.
type PageOutcome struct {
	Page   int    // zero-based page index
	Status Status // final state
	Items  int    // number of strokes, shapes or annotations written
	Err    error  // cause of the failure, for Status == Failed
}

// Report collects the outcomes of all pages touched by one operation.
type Report struct {
	Mode  Mode
	Pages []PageOutcome
}

// Count returns the number of pages with the given status.
func (r *Report) Count(s Status) int {
	n := 0
	for _, p := range r.Pages {
		if p.Status == s {
			n++
		}
	}
	return n
}

// Items returns the total number of items written.
func (r *Report) Items() int {
	n := 0
	for _, p := range r.Pages {
		n += p.Items
	}
	return n
}

// Err combines the errors of all failed pages.
// It returns nil if no page failed.
func (r *Report) Err() error {
	var errs []error
	for _, p := range r.Pages {
		if p.Status == Failed {
			errs = append(errs, p.Err)
		}
	}
	return errors.Join(errs...)
}

// String summarises the report in a human-readable form.
func (r *Report) String() string {
	return fmt.Sprintf("%s: %d pages done, %d skipped, %d failed, %d items",
		r.Mode, r.Count(Done), r.Count(Skipped), r.Count(Failed), r.Items())
}

// Mutator applies markup to the pages of a document.
type Mutator struct {
	Doc *pdfdoc.Document

	// Drift is added to all y coordinates after converting from caller
	// space to PDF user space.
	Drift float64

	// HighlightAlpha is the opacity used for highlighter strokes.
	HighlightAlpha float64

	// Author, if set, is stored in the /T entry of new annotations.
	Author string

	// Logger receives per-item and per-page diagnostics.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Now returns the modification time for new annotations.
	// If nil, time.Now is used.
	Now func() time.Time

	seq int
}

// Apply writes the strokes and shapes into the document, using the given
// mode.  Pages are processed in increasing order.  For mode Flatten, the
// markup is ignored and all pages are flattened.
func (m *Mutator) Apply(mode Mode, strokes markup.StrokesByPage, shapes markup.ShapesByPage) *Report {
	if mode == Flatten {
		return m.Flatten()
	}

	pages := make(map[int]bool)
	for i := range strokes {
		pages[i] = true
	}
	for i := range shapes {
		pages[i] = true
	}

	report := &Report{Mode: mode}
	for _, idx := range slices.Sorted(maps.Keys(pages)) {
		items := geometry.Items(strokes[idx], shapes[idx])
		out := m.runPage(mode, idx, func(p *pdfdoc.Page) (int, error) {
			switch mode {
			case Interactive:
				return m.interactive(p, items)
			case Bake:
				return m.bake(p, items)
			default:
				return 0, fmt.Errorf("unsupported mode %s", mode)
			}
		})
		report.Pages = append(report.Pages, out)
	}
	return report
}

// Flatten converts the annotations on every page of the document into page
// content.
func (m *Mutator) Flatten() *Report {
	report := &Report{Mode: Flatten}
	for idx := range m.Doc.NumPages() {
		out := m.runPage(Flatten, idx, m.flatten)
		report.Pages = append(report.Pages, out)
	}
	return report
}

// runPage runs fn on one page and converts the result into a page outcome.
// If fn fails or panics, all top-level changes to the page dictionary are
// rolled back.
func (m *Mutator) runPage(mode Mode, idx int, fn func(*pdfdoc.Page) (int, error)) (out PageOutcome) {
	out.Page = idx
	log := m.logger().With("mode", mode.String(), "page", idx)

	p, err := m.Doc.Page(idx)
	if err != nil {
		out.Status = Failed
		out.Err = err
		log.Error("cannot load page", "err", err)
		return out
	}
	saved := maps.Clone(p.Dict)

	defer func() {
		if r := recover(); r != nil {
			out.Status = Failed
			out.Items = 0
			out.Err = fmt.Errorf("page %d: %w: %v", idx, ErrPanic, r)
		}
		if out.Status == Failed {
			clear(p.Dict)
			maps.Copy(p.Dict, saved)
			log.Error("page failed", "err", out.Err)
			return
		}
		log.Debug("page processed", "status", out.Status.String(), "items", out.Items)
	}()

	n, err := fn(p)
	switch {
	case err != nil:
		out.Status = Failed
		out.Err = fmt.Errorf("page %d: %w", idx, err)
	case n == 0:
		out.Status = Skipped
	default:
		out.Status = Done
		out.Items = n
	}
	return out
}

func (m *Mutator) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func (m *Mutator) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// drawable returns the items which can be drawn, logging the others.
func (m *Mutator) drawable(page int, items []markup.Item) []markup.Item {
	res := make([]markup.Item, 0, len(items))
	for i, it := range items {
		if !it.IsDrawable() {
			m.logger().Warn("skipping malformed item", "page", page, "item", i)
			continue
		}
		res = append(res, it)
	}
	return res
}

var (
	// ErrPanic marks page failures caused by a run-time panic.
	ErrPanic = errors.New("unexpected failure")
)
