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
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/content"
	"seehuhn.de/go/markup/pdfdoc"
	"seehuhn.de/go/markup/resources"
)

// bake draws all drawable items into the page content, using a single
// content stream appended after the existing content.
func (m *Mutator) bake(p *pdfdoc.Page, items []markup.Item) (int, error) {
	items = m.drawable(p.Index, items)
	if len(items) == 0 {
		return 0, nil
	}

	var gs pdf.Name
	for _, it := range items {
		if !it.Highlighter {
			continue
		}
		res, err := p.Resources()
		if err != nil {
			return 0, err
		}
		gs, err = resources.EnsureTransparency(p.Doc(), res, m.HighlightAlpha)
		if err != nil {
			return 0, err
		}
		resources.EnsureTransparencyGroup(p.Dict)
		break
	}

	data := content.Build(items, content.Flip(p.Bounds, m.Drift), string(gs))
	if err := p.AppendIsolated(data); err != nil {
		return 0, err
	}
	return len(items), p.Commit()
}
