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

package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/markup/internal/sample"
	"seehuhn.de/go/markup/pdfdoc"
)

const markupJSON = `{
  "strokes": {"0": [{"points": [{"X": 10, "Y": 10}, {"X": 20, "Y": 10}],
                     "color": {"r": 1, "g": 0, "b": 0}, "width": 2}]},
  "shapes": {"1": [{"kind": "arrow", "from": {"X": 50, "Y": 50},
                    "to": {"X": 150, "Y": 90}, "width": 2}]}
}`

type fixture struct {
	dir    string
	config string
	markup string
	in     string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		config: filepath.Join(dir, "config.toml"),
		markup: filepath.Join(dir, "markup.json"),
		in:     filepath.Join(dir, "in.pdf"),
	}
	cfg := "temp_dir = " + quote(t.TempDir()) + "\n" +
		"fallback_dir = " + quote(filepath.Join(dir, "fallback")) + "\n" +
		"log_level = \"error\"\n"
	if err := os.WriteFile(f.config, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.markup, []byte(markupJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	err := sample.WriteFile(f.in,
		sample.Page{Content: "0 0 m 10 10 l S"},
		sample.Page{Annots: []sample.Annot{{
			Subtype:    "Link",
			Rect:       rect.Rect{LLx: 100, LLy: 100, URx: 110, URy: 110},
			Appearance: "0 0 m 10 10 l S",
		}}})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) run(t *testing.T, verbose bool, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr, verbose)
	return stdout.String(), stderr.String(), err
}

// subtypes returns the annotation subtypes on every page of the file.
func subtypes(t *testing.T, path string) [][]string {
	t.Helper()
	doc, err := pdfdoc.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	res := make([][]string, doc.NumPages())
	for i := range res {
		p, err := doc.Page(i)
		if err != nil {
			t.Fatal(err)
		}
		annots, err := p.Annots()
		if err != nil {
			t.Fatal(err)
		}
		res[i] = []string{}
		for _, obj := range annots {
			dict, err := doc.GetDict(obj)
			if err != nil {
				t.Fatal(err)
			}
			subtype, _ := doc.GetName(dict["Subtype"])
			res[i] = append(res[i], string(subtype))
		}
	}
	return res
}

func TestProduce(t *testing.T) {
	cases := []struct {
		command string
		want    [][]string
	}{
		{"bake", [][]string{{}, {"Link"}}},
		{"annotate", [][]string{{"Ink"}, {"Link", "Ink"}}},
		{"flatten", [][]string{{}, {"Link"}}},
	}
	for _, c := range cases {
		t.Run(c.command, func(t *testing.T) {
			f := setup(t)
			out := filepath.Join(f.dir, "out.pdf")

			args := []string{c.command, "-config", f.config}
			if c.command != "flatten" {
				args = append(args, "-m", f.markup)
			}
			args = append(args, f.in, out)
			stdout, stderr, err := f.run(t, false, args...)
			if err != nil {
				t.Fatalf("%v\n%s", err, stderr)
			}
			if got := strings.TrimSpace(stdout); got != out {
				t.Errorf("stdout = %q, want %q", got, out)
			}
			if d := cmp.Diff(c.want, subtypes(t, out)); d != "" {
				t.Errorf("annotations (-want +got):\n%s", d)
			}

			// a second run must not overwrite the result
			if _, _, err := f.run(t, false, args...); err == nil {
				t.Error("existing output file was overwritten")
			}
			force := append([]string{c.command, "-f"}, args[1:]...)
			if _, stderr, err := f.run(t, false, force...); err != nil {
				t.Errorf("-f: %v\n%s", err, stderr)
			}
		})
	}
}

func TestVerbose(t *testing.T) {
	f := setup(t)
	out := filepath.Join(f.dir, "out.pdf")
	stdout, _, err := f.run(t, true, "bake", "-config", f.config, "-m", f.markup, f.in, out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"page 1: done, 1 items", "page 2: done, 1 items"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output %q does not contain %q", stdout, want)
		}
	}
}

func TestWriteBack(t *testing.T) {
	f := setup(t)
	stdout, stderr, err := f.run(t, false, "writeback", "-config", f.config, "-m", f.markup, f.in)
	if err != nil {
		t.Fatalf("%v\n%s", err, stderr)
	}
	if got := strings.TrimSpace(stdout); got != f.in {
		t.Errorf("stdout = %q, want %q", got, f.in)
	}
	want := [][]string{{"Ink"}, {"Link", "Ink"}}
	if d := cmp.Diff(want, subtypes(t, f.in)); d != "" {
		t.Errorf("annotations (-want +got):\n%s", d)
	}

	_, _, err = f.run(t, false, "writeback", "-config", f.config, "-m", f.markup, "-bake", f.in)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, subtypes(t, f.in)); d != "" {
		t.Errorf("baking changed the annotations (-want +got):\n%s", d)
	}
}

func TestPreview(t *testing.T) {
	f := setup(t)
	out := filepath.Join(f.dir, "page.png")
	_, stderr, err := f.run(t, false, "preview", "-config", f.config, "-m", f.markup,
		"-scale", "1", "-thumb", "100", f.in, out)
	if err != nil {
		t.Fatalf("%v\n%s", err, stderr)
	}

	r, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	img, err := png.Decode(r)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 77 || b.Dy() != 100 {
		t.Errorf("image size = %dx%d, want 77x100", b.Dx(), b.Dy())
	}

	_, _, err = f.run(t, false, "preview", "-config", f.config, "-m", f.markup,
		"-page", "3", f.in, filepath.Join(f.dir, "missing.png"))
	if err == nil {
		t.Error("page out of range was accepted")
	}
}

func TestUsage(t *testing.T) {
	f := setup(t)
	cases := [][]string{
		nil,
		{"frobnicate"},
		{"bake", "-config", f.config, "-m", f.markup, f.in},
		{"bake", "-config", f.config, f.in, filepath.Join(f.dir, "out.pdf")},
		{"flatten", "-unknown", f.in, filepath.Join(f.dir, "out.pdf")},
	}
	for _, args := range cases {
		_, stderr, err := f.run(t, false, args...)
		if !errors.Is(err, errUsage) {
			t.Errorf("%q: got %v, want usage error", args, err)
		}
		if stderr == "" {
			t.Errorf("%q: no message", args)
		}
	}
}

func TestBadInput(t *testing.T) {
	f := setup(t)
	bad := filepath.Join(f.dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"shapes": {"0": [{"kind": "hexagon"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	badConfig := filepath.Join(f.dir, "bad.toml")
	if err := os.WriteFile(badConfig, []byte("highlight_alpha = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(f.dir, "out.pdf")

	cases := [][]string{
		{"bake", "-config", f.config, "-m", bad, f.in, out},
		{"bake", "-config", badConfig, "-m", f.markup, f.in, out},
		{"bake", "-config", f.config, "-m", f.markup, filepath.Join(f.dir, "missing.pdf"), out},
	}
	for _, args := range cases {
		_, _, err := f.run(t, false, args...)
		if err == nil || errors.Is(err, errUsage) {
			t.Errorf("%q: got %v, want error", args, err)
		}
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("output written for bad input")
	}
}

func quote(s string) string {
	return `'` + s + `'`
}
