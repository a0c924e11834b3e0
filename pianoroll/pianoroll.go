// Package pianoroll draws a resolved timeline as a piano-roll image: time runs
// left to right, pitch bottom to top, and every note is a bar as long as the
// rendered tone.
package pianoroll

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/moonlighter/moonlighter"
	"golang.org/x/image/font/gofont/goregular"
)

type (
	Options struct {
		PixelsPerSecond float64
		KeyHeight       float64
		NoteLength      float64 // seconds, the same as the rendered note length
		MaxWidth        int     // PixelsPerSecond is reduced to fit long pieces
	}

	color struct{ R, G, B float64 }
)

const (
	margin    = 32.0
	labelSize = 9.0
)

var colors = []color{
	{0.95, 0.77, 0.36},
	{0.42, 0.73, 0.93},
	{0.55, 0.85, 0.49},
	{0.93, 0.47, 0.51},
	{0.74, 0.58, 0.93},
	{0.38, 0.86, 0.80},
}

var background = color{0.08, 0.09, 0.13}

func DefaultOptions() Options {
	return Options{PixelsPerSecond: 100, KeyHeight: 6, NoteLength: moonlighter.DefaultNoteLength, MaxWidth: 8192}
}

// Geometry is the placement of the roll inside the image.
type Geometry struct {
	Width, Height   int
	PixelsPerSecond float64
	KeyHeight       float64
	LowKey, HighKey uint8
}

// Layout computes the image geometry for the timeline.
func Layout(timeline moonlighter.Timeline, opts Options) Geometry {
	lo, hi := uint8(60), uint8(72)
	first := true
	for note := range timeline.Notes {
		if first {
			lo, hi = note.Key, note.Key
			first = false
		}
		lo, hi = min(lo, note.Key), max(hi, note.Key)
	}
	pps := opts.PixelsPerSecond
	seconds := timeline.Duration + opts.NoteLength
	if opts.MaxWidth > 0 && margin+seconds*pps > float64(opts.MaxWidth) {
		pps = (float64(opts.MaxWidth) - margin) / seconds
	}
	width := int(math.Ceil(margin + seconds*pps))
	if opts.MaxWidth > 0 {
		width = min(width, opts.MaxWidth)
	}
	return Geometry{
		Width:           width,
		Height:          int(math.Ceil(float64(int(hi)-int(lo)+1)*opts.KeyHeight + margin)),
		PixelsPerSecond: pps,
		KeyHeight:       opts.KeyHeight,
		LowKey:          lo,
		HighKey:         hi,
	}
}

// X returns the horizontal pixel position of time t.
func (g Geometry) X(t float64) float64 {
	return margin + t*g.PixelsPerSecond
}

// Y returns the top pixel row of the lane of key.
func (g Geometry) Y(key uint8) float64 {
	return margin/2 + float64(int(g.HighKey)-int(key))*g.KeyHeight
}

// Draw renders the timeline into an image.
func Draw(timeline moonlighter.Timeline, opts Options) (image.Image, error) {
	if !(opts.PixelsPerSecond > 0) || !(opts.KeyHeight > 0) || !(opts.NoteLength > 0) {
		return nil, fmt.Errorf("invalid piano roll options %+v", opts)
	}
	g := Layout(timeline, opts)
	dc := gg.NewContext(g.Width, g.Height)
	setRGBColor(dc, background)
	dc.Clear()
	drawLanes(dc, g)
	if err := drawLabels(dc, g); err != nil {
		return nil, err
	}
	for note := range timeline.Notes {
		dc.DrawRectangle(g.X(note.Time), g.Y(note.Key), opts.NoteLength*g.PixelsPerSecond, g.KeyHeight)
		setRGBColor(dc, colors[note.Track%len(colors)])
		dc.FillPreserve()
		dc.SetRGBA(0, 0, 0, 0.6)
		dc.SetLineWidth(0.5)
		dc.Stroke()
	}
	return dc.Image(), nil
}

// Save draws the timeline and writes it to path as PNG.
func Save(path string, timeline moonlighter.Timeline, opts Options) error {
	img, err := Draw(timeline, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("could not create directory for %v: %w", path, err)
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("could not save piano roll %v: %w", path, err)
	}
	return nil
}

func drawLanes(dc *gg.Context, g Geometry) {
	for key := int(g.LowKey); key <= int(g.HighKey); key++ {
		if !isBlackKey(uint8(key)) {
			continue
		}
		dc.DrawRectangle(margin, g.Y(uint8(key)), float64(g.Width)-margin, g.KeyHeight)
		dc.SetRGBA(0, 0, 0, 0.25)
		dc.Fill()
	}
	for s := 0.0; g.X(s) < float64(g.Width); s++ {
		dc.DrawLine(g.X(s), margin/2, g.X(s), float64(g.Height)-margin/2)
		dc.SetRGBA(1, 1, 1, 0.08)
		dc.SetLineWidth(0.5)
		dc.Stroke()
	}
}

func drawLabels(dc *gg.Context, g Geometry) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("could not parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: labelSize}))
	dc.SetRGBA(1, 1, 1, 0.7)
	for key := int(g.LowKey); key <= int(g.HighKey); key++ {
		if key%12 != 0 {
			continue
		}
		dc.DrawStringAnchored(fmt.Sprintf("C%d", key/12-1), margin/2, g.Y(uint8(key))+g.KeyHeight/2, 0.5, 0.5)
	}
	return nil
}

func setRGBColor(dc *gg.Context, c color) {
	dc.SetRGB(c.R, c.G, c.B)
}

func isBlackKey(key uint8) bool {
	switch key % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}
