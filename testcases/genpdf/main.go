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

// Command genpdf writes sample documents for all markup test cases.
//
// For every test case, a blank page is marked up in bake mode and in
// interactive mode, the interactive version is flattened, and a preview
// image of the markup is stored next to the PDF files.  With -gs, the
// baked PDF file is also rendered with Ghostscript, for visual comparison
// with the preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"maps"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/geometry"
	"seehuhn.de/go/markup/internal/sample"
	"seehuhn.de/go/markup/mutate"
	"seehuhn.de/go/markup/preview"
	"seehuhn.de/go/markup/session"
	"seehuhn.de/go/markup/testcases"
)

const refDir = "testdata/samples"

func main() {
	useGS := flag.Bool("gs", false, "render the baked files with Ghostscript")
	flag.Parse()

	if err := os.MkdirAll(refDir, 0o755); err != nil {
		panic(err)
	}

	c := &session.Coordinator{}
	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if err := generate(c, name, tc, *useGS); err != nil {
				panic(fmt.Errorf("%s: %w", name, err))
			}
		}
	}
}

func generate(c *session.Coordinator, name string, tc testcases.Case, useGS bool) error {
	ctx := context.Background()
	base := filepath.Join(refDir, name)

	w := tc.Page.URx - tc.Page.LLx
	h := tc.Page.URy - tc.Page.LLy
	frame := fmt.Sprintf("0.8 G 1 w 0.5 0.5 %g %g re S", w-1, h-1)
	blank := base + ".pdf"
	if err := sample.WriteFile(blank, sample.Page{MediaBox: tc.Page, Content: frame}); err != nil {
		return err
	}

	strokes := markup.StrokesByPage{0: tc.Strokes}
	shapes := markup.ShapesByPage{0: tc.Shapes}
	if _, err := c.ProduceNewFile(ctx, blank, strokes, shapes, mutate.Bake, base+"_bake.pdf"); err != nil {
		return err
	}
	if _, err := c.ProduceNewFile(ctx, blank, strokes, shapes, mutate.Interactive, base+"_annot.pdf"); err != nil {
		return err
	}
	if _, err := c.Flatten(ctx, base+"_annot.pdf", base+"_flat.pdf"); err != nil {
		return err
	}

	img := preview.Render(geometry.Items(tc.Strokes, tc.Shapes), tc.Page, 1, 0)
	f, err := os.Create(base + "_preview.png")
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if useGS {
		return renderPNG(base+"_bake.pdf", base+"_bake.png")
	}
	return nil
}

func renderPNG(pdfPath, pngPath string) error {
	// -r72: 1 point = 1 pixel, matching the preview at scale 1
	cmd := exec.Command(
		"gs", "-q",
		"-sDEVICE=png16m",
		"-r72",
		"-dGraphicsAlphaBits=4",
		"-o", pngPath,
		pdfPath,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
