package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/moonlighter/moonlighter"
)

// notesFile is the timeline as written by -notes.
type notesFile struct {
	Source               string  `yaml:"source" json:"source"`
	Tempo                string  `yaml:"tempo" json:"tempo"`
	Tuning               float64 `yaml:"tuning" json:"tuning"`
	NoteLength           float64 `yaml:"notelength" json:"notelength"`
	moonlighter.Timeline `yaml:",inline"`
}

// writeNotes writes the timeline to base + ".yml", or base + ".json" if
// asJSON, and returns the path written.
func writeNotes(base, source string, opts moonlighter.Options, timeline moonlighter.Timeline, asJSON bool) (string, error) {
	doc := notesFile{
		Source:     filepath.Base(source),
		Tempo:      opts.Tempo.String(),
		Tuning:     opts.Tuning,
		NoteLength: opts.Render.NoteLength,
		Timeline:   timeline,
	}
	var (
		contents []byte
		err      error
		path     string
	)
	if asJSON {
		path = base + ".json"
		contents, err = json.MarshalIndent(doc, "", "  ")
	} else {
		path = base + ".yml"
		contents, err = yaml.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("could not marshal notes: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return "", fmt.Errorf("could not create output directory for %v: %w", path, err)
	}
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return "", fmt.Errorf("could not write file %v: %w", path, err)
	}
	return path, nil
}
