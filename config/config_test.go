package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moonlighter/moonlighter"
	"github.com/moonlighter/moonlighter/config"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	if c.SampleRate != 44100 || c.NoteLength != 1 || c.Tuning != 438 || c.Tempo != "per-track" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.PollInterval() != 100*time.Millisecond {
		t.Errorf("expected 100 ms poll interval, got %v", c.PollInterval())
	}
	if !c.Export.PCM16 || c.Export.FFmpeg != "ffmpeg" {
		t.Errorf("unexpected export defaults: %+v", c.Export)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}
	o, err := c.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if o != moonlighter.DefaultOptions() {
		t.Errorf("expected %+v, got %+v", moonlighter.DefaultOptions(), o)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	yml := "notelength: 0.25\ntempo: global\nexport:\n  bitrate: 320k\n"
	if err := os.WriteFile(path, []byte(yml), 0644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	c, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if c.NoteLength != 0.25 || c.Tempo != "global" || c.Export.Bitrate != "320k" {
		t.Errorf("overrides not applied: %+v", c)
	}
	if c.SampleRate != 44100 || c.Export.FFmpeg != "ffmpeg" {
		t.Errorf("defaults not kept: %+v", c)
	}
	o, err := c.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if o.Tempo != moonlighter.TempoGlobal {
		t.Errorf("expected global tempo, got %v", o.Tempo)
	}
}

func TestLoadFileMissingIsDefault(t *testing.T) {
	c, err := config.LoadFile(filepath.Join(t.TempDir(), "nothing-here.yml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if c != config.Default() {
		t.Errorf("expected defaults, got %+v", c)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)
	if err := os.WriteFile(path, []byte("samplerate: [oops"), 0644); err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	if _, err := config.LoadFile(path); err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*config.Config){
		"zero sample rate":   func(c *config.Config) { c.SampleRate = 0 },
		"negative length":    func(c *config.Config) { c.NoteLength = -1 },
		"zero tuning":        func(c *config.Config) { c.Tuning = 0 },
		"unknown tempo mode": func(c *config.Config) { c.Tempo = "sometimes" },
		"zero poll":          func(c *config.Config) { c.PollMs = 0 },
		"broken template":    func(c *config.Config) { c.Export.Template = "{{ .Name" },
	}
	for name, modify := range tests {
		c := config.Default()
		modify(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected Validate to fail", name)
		}
	}
}

func TestOutputPath(t *testing.T) {
	c := config.Default()
	got, err := c.OutputPath(filepath.Join("music", "mond_1.mid"))
	if err != nil {
		t.Fatalf("OutputPath failed: %v", err)
	}
	if expected := filepath.Join("music", "mond_1.mp3"); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
	c.Export.Template = `out/{{ .Name | replace "_" "-" | upper }}-{{ .NoteLength }}s.ogg`
	got, err = c.OutputPath("mond_1.mid")
	if err != nil {
		t.Fatalf("OutputPath failed: %v", err)
	}
	if expected := filepath.Join("out", "MOND-1-1s.ogg"); got != expected {
		t.Errorf("expected %v, got %v", expected, got)
	}
	c.Export.Template = "  "
	if _, err := c.OutputPath("mond_1.mid"); err == nil {
		t.Error("expected an error for an empty output path")
	}
}
