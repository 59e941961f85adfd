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

// Package config reads the settings of the markup tools from a TOML file.
//
// A typical configuration file looks like this:
//
//	drift = 0
//	device_scale = 2
//	highlight_alpha = 0.4
//	fallback_dir = "/home/jochen/Documents"
//	compress = true
//	author = "Jochen Voss"
//	log_level = "info"
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/asaskevich/govalidator"
)

// Config holds all settings.  Zero values of optional fields mean "use the
// default".
type Config struct {
	// Drift is added to all y coordinates after conversion to PDF user
	// space.  It compensates for a constant vertical offset between the
	// on-screen ink and the written document.
	Drift float64 `toml:"drift"`

	// DeviceScale is the number of device pixels per PDF unit of the
	// capture surface.  If Drift is zero and DeviceScale is positive, the
	// drift is set to half a device pixel.
	DeviceScale float64 `toml:"device_scale" valid:"range(0|100)"`

	// HighlightAlpha is the opacity of highlighter strokes.
	HighlightAlpha float64 `toml:"highlight_alpha" valid:"range(0|1)"`

	// FallbackDir receives the output of a write-back if the original
	// file cannot be replaced.  If empty, the directory "markup" inside
	// the user's configuration directory is used.
	FallbackDir string `toml:"fallback_dir"`

	// TempDir holds working copies and partially written files.
	// If empty, os.TempDir() is used.
	TempDir string `toml:"temp_dir"`

	// Compress enables Flate compression of new content streams.
	Compress bool `toml:"compress"`

	// Author is stored in new annotations.
	Author string `toml:"author"`

	// LogLevel is one of "debug", "info", "warn" and "error".
	LogLevel string `toml:"log_level" valid:"in(debug|info|warn|error)"`
}

// Default returns the default settings.
func Default() *Config {
	return &Config{
		HighlightAlpha: 0.5,
		Compress:       true,
		LogLevel:       "info",
	}
}

// Read loads the configuration file at path.  Settings missing from the
// file keep their default values.
func Read(path string) (*Config, error) {
	c := Default()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file is missing: %w", err)
	}
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks that all fields are in range.
func (c *Config) Validate() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	// govalidator's range tag does not accept negative bounds
	if !(c.Drift >= -maxDrift && c.Drift <= maxDrift) {
		return fmt.Errorf("%w: Drift: %g is outside [-%g, %g]", ErrInvalid, c.Drift, maxDrift, maxDrift)
	}
	return nil
}

// EffectiveDrift returns the vertical offset to use for the written markup.
func (c *Config) EffectiveDrift() float64 {
	if c.Drift == 0 && c.DeviceScale > 0 {
		return 0.5 / c.DeviceScale
	}
	return c.Drift
}

// Level returns the log level for the configured name.
// Unknown or empty names map to slog.LevelInfo.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	// ErrInvalid indicates that a setting is out of range.
	ErrInvalid = errors.New("invalid configuration")

	// ErrUnknownKey indicates a key in the configuration file which does
	// not correspond to any setting.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// maxDrift is the largest permitted absolute value of Config.Drift.
const maxDrift = 5.0
