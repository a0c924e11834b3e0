package pianoroll_test

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/moonlighter/moonlighter"
	"github.com/moonlighter/moonlighter/pianoroll"
)

var timeline = moonlighter.Timeline{
	Duration: 2,
	Tracks: [][]moonlighter.Note{
		{{Time: 0, Freq: 438, Key: 69, Track: 0}, {Time: 2, Freq: 219, Key: 57, Track: 0}},
		{{Time: 1, Freq: 876, Key: 81, Track: 1}},
	},
}

func TestLayout(t *testing.T) {
	g := pianoroll.Layout(timeline, pianoroll.DefaultOptions())
	if g.LowKey != 57 || g.HighKey != 81 {
		t.Fatalf("expected keys 57..81, got %v..%v", g.LowKey, g.HighKey)
	}
	if g.X(3) > float64(g.Width) {
		t.Errorf("the last note ends at %v, beyond the image width %v", g.X(3), g.Width)
	}
	if g.Y(81) >= g.Y(57) {
		t.Errorf("higher keys should be drawn above lower ones")
	}
	long := moonlighter.Timeline{Duration: 3600}
	if g := pianoroll.Layout(long, pianoroll.DefaultOptions()); g.Width > 8192 {
		t.Errorf("expected the width to be capped at 8192, got %v", g.Width)
	}
}

func TestDrawMarksNotes(t *testing.T) {
	opts := pianoroll.DefaultOptions()
	img, err := pianoroll.Draw(timeline, opts)
	if err != nil {
		t.Fatalf("Draw failed: %v", err)
	}
	g := pianoroll.Layout(timeline, opts)
	if b := img.Bounds(); b.Dx() != g.Width || b.Dy() != g.Height {
		t.Fatalf("expected %vx%v image, got %v", g.Width, g.Height, b)
	}
	y := int(g.Y(81) + g.KeyHeight/2)
	inside := img.At(int(g.X(1.5)), y)
	outside := img.At(int(g.X(0.5)), y)
	if inside == outside {
		t.Errorf("expected the note at 1 s to be visible in its lane")
	}
}

func TestDrawInvalidOptions(t *testing.T) {
	opts := pianoroll.DefaultOptions()
	opts.NoteLength = 0
	if _, err := pianoroll.Draw(timeline, opts); err == nil {
		t.Fatal("expected an error for zero note length")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roll", "mond_1.png")
	if err := pianoroll.Save(path, timeline, pianoroll.DefaultOptions()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not open saved file: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("saved file is not a PNG: %v", err)
	}
}
