// Package config loads the settings of moonlighter: built-in defaults,
// overridden by an optional config.yml in the user config directory.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/moonlighter/moonlighter"
	"gopkg.in/yaml.v2"
)

const FileName = "config.yml"

type (
	Config struct {
		SampleRate int
		NoteLength float64
		Tuning     float64
		Tempo      string // "per-track" or "global"
		PollMs     int    // how often playback checks for a skip, in milliseconds
		Export     Export
	}

	Export struct {
		// Template is a text/template, with sprig functions, producing the
		// output path from PathData.
		Template string
		FFmpeg   string
		Bitrate  string
		PCM16    bool
		KeepWav  bool
	}

	// PathData is what the export template sees.
	PathData struct {
		Input      string // path of the MIDI file
		Dir        string // directory of the MIDI file
		Name       string // file name of the MIDI file without extension
		SampleRate int
		NoteLength float64
	}
)

//go:embed moonlighter.yml
var defaultConfigYaml []byte

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	err := yaml.UnmarshalStrict(defaultConfigYaml, &c)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal default config: %w", err))
	}
	return c
}

// Dir returns the directory where the user config file lives.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "moonlighter"), nil
}

// Load returns the defaults overridden by the user config file, if there is
// one. A user config that exists but cannot be parsed is an error.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile returns the defaults overridden by the settings in path. A missing
// file is not an error.
func LoadFile(path string) (Config, error) {
	c := Default()
	if _, err := readYml(path, &c); err != nil {
		return Default(), fmt.Errorf("could not read config %v: %w", path, err)
	}
	return c, nil
}

// readYml modifies the target argument, i.e. needs a pointer
func readYml(path string, target interface{}) (exists bool, err error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, yaml.Unmarshal(b, target)
}

// Options converts the config to rendering options and validates them.
func (c Config) Options() (moonlighter.Options, error) {
	mode, err := moonlighter.ParseTempoMode(c.Tempo)
	if err != nil {
		return moonlighter.Options{}, err
	}
	o := moonlighter.Options{
		Render: moonlighter.RenderParams{SampleRate: c.SampleRate, NoteLength: c.NoteLength},
		Tuning: c.Tuning,
		Tempo:  mode,
	}
	if err := o.Validate(); err != nil {
		return moonlighter.Options{}, err
	}
	return o, nil
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollMs) * time.Millisecond
}

func (c Config) Validate() error {
	if _, err := c.Options(); err != nil {
		return err
	}
	if c.PollMs <= 0 {
		return fmt.Errorf("pollms must be positive (got %d)", c.PollMs)
	}
	if _, err := c.exportTemplate(); err != nil {
		return err
	}
	return nil
}

// OutputPath returns where the export of the MIDI file input goes, according
// to the export template.
func (c Config) OutputPath(input string) (string, error) {
	tmpl, err := c.exportTemplate()
	if err != nil {
		return "", err
	}
	data := PathData{
		Input:      input,
		Dir:        filepath.Dir(input),
		Name:       strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)),
		SampleRate: c.SampleRate,
		NoteLength: c.NoteLength,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("could not execute export template: %w", err)
	}
	path := strings.TrimSpace(buf.String())
	if path == "" {
		return "", fmt.Errorf("export template %q gave an empty path for %v", c.Export.Template, input)
	}
	return filepath.Clean(path), nil
}

func (c Config) exportTemplate() (*template.Template, error) {
	tmpl, err := template.New("export").Funcs(sprig.TxtFuncMap()).Parse(c.Export.Template)
	if err != nil {
		return nil, fmt.Errorf("could not parse export template: %w", err)
	}
	return tmpl, nil
}
