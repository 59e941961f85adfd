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

// Markup adds ink and shape markup to PDF files, and flattens annotations.
//
// Usage:
//
//	markup bake      [options] -m markup.json in.pdf out.pdf
//	markup annotate  [options] -m markup.json in.pdf out.pdf
//	markup flatten   [options] in.pdf out.pdf
//	markup writeback [options] -m markup.json [-bake] [-src copy.pdf] original.pdf
//	markup preview   [options] -m markup.json [-page n] [-scale s] in.pdf out.png
//
// The markup file format is described in the documentation of
// seehuhn.de/go/markup.Set.  Settings are read from the file given by
// -config, or from markup/config.toml in the user's configuration
// directory if that file exists.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interactive := term.IsTerminal(int(os.Stdout.Fd()))
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, interactive)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, "markup:", err)
		os.Exit(1)
	}
}

// run executes the command line args.  If verbose is set, a summary of
// the per-page results is printed, otherwise only the location of the
// result is written to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, verbose bool) error {
	if len(args) < 1 {
		usage(stderr)
		return errUsage
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "markup: unknown command %q\n", args[0])
		usage(stderr)
		return errUsage
	}
	return cmd.run(ctx, &env{
		args:    args[1:],
		name:    args[0],
		stdout:  stdout,
		stderr:  stderr,
		verbose: verbose,
	})
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: markup <command> [options] <args>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use 'markup <command> -h' for command-specific help")
}

var errUsage = errors.New("usage error")
