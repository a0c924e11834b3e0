package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/moonlighter/moonlighter"
)

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.midi", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatalf("could not create %v: %v", name, err)
		}
	}
	files, err := expand([]string{dir, "missing.mid"})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	sort.Strings(files)
	expected := []string{filepath.Join(dir, "a.mid"), filepath.Join(dir, "b.midi"), "missing.mid"}
	sort.Strings(expected)
	if len(files) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, files)
	}
	for i := range files {
		if files[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected[i], files[i])
		}
	}
}

func TestWriteNotes(t *testing.T) {
	timeline := moonlighter.Timeline{
		Duration: 1.5,
		Tracks:   [][]moonlighter.Note{{{Time: 1.5, Freq: 438, Key: 69, Track: 0}}},
	}
	base := filepath.Join(t.TempDir(), "out", "mond_1")
	opts := moonlighter.DefaultOptions()

	path, err := writeNotes(base, "music/mond_1.mid", opts, timeline, false)
	if err != nil {
		t.Fatalf("writeNotes failed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read %v: %v", path, err)
	}
	var doc notesFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		t.Fatalf("could not parse yml: %v", err)
	}
	if doc.Source != "mond_1.mid" || doc.Tempo != "per-track" || doc.Duration != 1.5 || len(doc.Tracks) != 1 || doc.Tracks[0][0].Key != 69 {
		t.Errorf("unexpected yml contents: %+v", doc)
	}

	path, err = writeNotes(base, "mond_1.mid", opts, timeline, true)
	if err != nil {
		t.Fatalf("writeNotes failed: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Fatalf("expected a .json file, got %v", path)
	}
	b, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read %v: %v", path, err)
	}
	doc = notesFile{}
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("could not parse json: %v", err)
	}
	if doc.Tuning != moonlighter.DefaultTuning || doc.Tracks[0][0].Freq != 438 {
		t.Errorf("unexpected json contents: %+v", doc)
	}
}
