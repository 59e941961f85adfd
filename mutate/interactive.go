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

package mutate

import (
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/appearance"
	"seehuhn.de/go/markup/content"
	"seehuhn.de/go/markup/pdfdoc"
)

// interactive adds one ink annotation per drawable item.
func (m *Mutator) interactive(p *pdfdoc.Page, items []markup.Item) (int, error) {
	items = m.drawable(p.Index, items)
	if len(items) == 0 {
		return 0, nil
	}

	toPDF := content.Flip(p.Bounds, m.Drift)
	var errs []error
	n := 0
	for i, it := range items {
		if err := m.addInk(p, it, toPDF); err != nil {
			m.logger().Warn("skipping item", "page", p.Index, "item", i, "err", err)
			errs = append(errs, err)
			continue
		}
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no annotation created: %w", errors.Join(errs...))
	}
	return n, p.Commit()
}

// addInk creates an ink annotation for one item, including its appearance
// stream, and attaches it to the page.
func (m *Mutator) addInk(p *pdfdoc.Page, it markup.Item, toPDF matrix.Matrix) error {
	c := it.Color.Clamped()
	alpha := 1.0
	if it.Highlighter {
		alpha = m.HighlightAlpha
	}
	now := m.now()
	m.seq++

	annot := pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Ink"),
		"BS": pdf.Dict{
			"Type": pdf.Name("Border"),
			"W":    pdf.Real(max(it.Width, 0)),
			"S":    pdf.Name("S"),
		},
		"C":  pdf.Array{pdf.Real(c.R), pdf.Real(c.G), pdf.Real(c.B)},
		"CA": pdf.Real(alpha),
		"F":  pdf.Integer(flagPrint),
		"M":  pdfdoc.Date(now),
		"NM": pdfdoc.TextString(fmt.Sprintf("ink-%d-%d-%d", now.UnixNano(), p.Index, m.seq)),
	}
	if m.Author != "" {
		annot["T"] = pdfdoc.TextString(m.Author)
	}
	if it.Highlighter {
		annot["IT"] = pdf.Name("InkHighlight")
	}

	appearance.FinalizeInk(annot, it, toPDF)
	if _, err := appearance.Synthesize(p.Doc(), annot, it, toPDF); err != nil {
		return err
	}
	_, err := p.AddAnnotation(annot)
	return err
}

// Annotation flags, see section 12.5.3 of ISO 32000-1.
const (
	flagHidden = 1 << 1
	flagPrint  = 1 << 2
)
