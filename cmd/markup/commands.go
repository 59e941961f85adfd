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
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"seehuhn.de/go/markup"
	"seehuhn.de/go/markup/config"
	"seehuhn.de/go/markup/geometry"
	"seehuhn.de/go/markup/mutate"
	"seehuhn.de/go/markup/pdfdoc"
	"seehuhn.de/go/markup/preview"
	"seehuhn.de/go/markup/session"
)

type command struct {
	help string
	run  func(ctx context.Context, e *env) error
}

var commands = map[string]command{
	"bake":      {"draw markup into the page content", produce(mutate.Bake)},
	"annotate":  {"add markup as ink annotations", produce(mutate.Interactive)},
	"flatten":   {"convert annotations into page content", flatten},
	"writeback": {"write markup back into the original file", writeBack},
	"preview":   {"render the markup of one page to a PNG image", renderPreview},
}

var commandOrder = []string{"bake", "annotate", "flatten", "writeback", "preview"}

// env holds the state of one command invocation.
type env struct {
	name    string
	args    []string
	stdout  io.Writer
	stderr  io.Writer
	verbose bool

	fs         *flag.FlagSet
	configPath string
	markupPath string
	debug      bool
	force      bool

	cfg *config.Config
}

// flags creates the flag set with the options common to all commands.
func (e *env) flags(withMarkup bool, argsHelp string) *flag.FlagSet {
	fs := flag.NewFlagSet(e.name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&e.configPath, "config", "", "read settings from `file`")
	fs.BoolVar(&e.debug, "v", false, "log debug messages")
	if withMarkup {
		fs.StringVar(&e.markupPath, "m", "", "read markup from `file`")
	}
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: markup %s [options] %s\n\nOptions:\n", e.name, argsHelp)
		fs.PrintDefaults()
	}
	e.fs = fs
	return fs
}

// parse parses the command line and loads the settings.
func (e *env) parse(nArgs int) error {
	if err := e.fs.Parse(e.args); err != nil {
		return errUsage
	}
	if e.fs.NArg() != nArgs {
		e.fs.Usage()
		return errUsage
	}
	if e.fs.Lookup("m") != nil && e.markupPath == "" {
		fmt.Fprintln(e.stderr, "markup: no markup file given (-m)")
		return errUsage
	}

	cfg, err := loadConfig(e.configPath)
	if err != nil {
		return err
	}
	if e.debug {
		cfg.LogLevel = "debug"
	}
	e.cfg = cfg
	return nil
}

// loadConfig reads the settings from path.  If path is empty, the default
// configuration file is used if it exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(dir, "markup", "config.toml")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
	}
	return config.Read(path)
}

func (e *env) logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: e.cfg.Level()}))
}

func (e *env) coordinator() *session.Coordinator {
	return &session.Coordinator{
		Config: e.cfg,
		Logger: e.logger(),
	}
}

// markup reads the markup file given by -m.
func (e *env) markup() (*markup.Set, error) {
	data, err := os.ReadFile(e.markupPath)
	if err != nil {
		return nil, err
	}
	set := &markup.Set{}
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("%s: %w", e.markupPath, err)
	}
	return set, nil
}

// checkOutput refuses to overwrite an existing file, unless -f was given.
func (e *env) checkOutput(path string) error {
	if e.force {
		return nil
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("output file %q already exists", path)
	}
	return nil
}

// show prints the outcome of a transaction.
func (e *env) show(res *session.Result) {
	if !e.verbose {
		fmt.Fprintln(e.stdout, res.Location)
		return
	}
	fmt.Fprintln(e.stdout, res.Message)
	if res.Report == nil {
		return
	}
	for _, p := range res.Report.Pages {
		line := fmt.Sprintf("  page %d: %s", p.Page+1, p.Status)
		if p.Items > 0 {
			line += fmt.Sprintf(", %d items", p.Items)
		}
		if p.Err != nil {
			line += ": " + p.Err.Error()
		}
		fmt.Fprintln(e.stdout, line)
	}
}

func produce(mode mutate.Mode) func(context.Context, *env) error {
	return func(ctx context.Context, e *env) error {
		fs := e.flags(true, "in.pdf out.pdf")
		fs.BoolVar(&e.force, "f", false, "overwrite the output file if it exists")
		if err := e.parse(2); err != nil {
			return err
		}
		in, out := fs.Arg(0), fs.Arg(1)
		if err := e.checkOutput(out); err != nil {
			return err
		}
		set, err := e.markup()
		if err != nil {
			return err
		}

		res, err := e.coordinator().ProduceNewFile(ctx, in, set.Strokes, set.Shapes, mode, out)
		if err != nil {
			return err
		}
		e.show(res)
		return nil
	}
}

func flatten(ctx context.Context, e *env) error {
	fs := e.flags(false, "in.pdf out.pdf")
	fs.BoolVar(&e.force, "f", false, "overwrite the output file if it exists")
	if err := e.parse(2); err != nil {
		return err
	}
	in, out := fs.Arg(0), fs.Arg(1)
	if err := e.checkOutput(out); err != nil {
		return err
	}

	res, err := e.coordinator().Flatten(ctx, in, out)
	if err != nil {
		return err
	}
	e.show(res)
	return nil
}

func writeBack(ctx context.Context, e *env) error {
	fs := e.flags(true, "original.pdf")
	bake := fs.Bool("bake", false, "draw markup into the page content instead of adding annotations")
	src := fs.String("src", "", "use `file` as the source of the working copy")
	if err := e.parse(1); err != nil {
		return err
	}
	set, err := e.markup()
	if err != nil {
		return err
	}

	res, err := e.coordinator().SaveBackToOriginal(ctx, fs.Arg(0), *src, set.Strokes, set.Shapes, *bake)
	if err != nil {
		return err
	}
	if res.Location == session.Original {
		res.Location = fs.Arg(0)
	}
	e.show(res)
	return nil
}

func renderPreview(_ context.Context, e *env) error {
	fs := e.flags(true, "in.pdf out.png")
	page := fs.Int("page", 1, "page `number`, starting at 1")
	scale := fs.Float64("scale", 2, "pixels per PDF unit")
	thumb := fs.Int("thumb", 0, "scale the image down to at most `n` pixels")
	fs.BoolVar(&e.force, "f", false, "overwrite the output file if it exists")
	if err := e.parse(2); err != nil {
		return err
	}
	in, out := fs.Arg(0), fs.Arg(1)
	if err := e.checkOutput(out); err != nil {
		return err
	}
	set, err := e.markup()
	if err != nil {
		return err
	}

	doc, err := pdfdoc.Open(in)
	if err != nil {
		return err
	}
	defer doc.Close()
	p, err := doc.Page(*page - 1)
	if err != nil {
		return err
	}

	idx := *page - 1
	items := geometry.Items(set.Strokes[idx], set.Shapes[idx])
	overlay := &preview.Overlay{
		Scale:          *scale,
		Drift:          e.cfg.EffectiveDrift(),
		HighlightAlpha: e.cfg.HighlightAlpha,
	}
	img := preview.Render(nil, p.Bounds, *scale, 0)
	overlay.Draw(img, items)
	if *thumb > 0 {
		img = preview.Thumbnail(img, *thumb)
	}

	f, err := os.Create(out)
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
	e.logger().Debug("preview written", "path", out, "page", idx, "items", len(items))
	if e.verbose {
		fmt.Fprintf(e.stdout, "page %d: %d items, written to %s\n", *page, len(items), out)
	} else {
		fmt.Fprintln(e.stdout, out)
	}
	return nil
}
