package moonlighter

import (
	"errors"
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

const (
	DefaultSampleRate = 44100
	DefaultNoteLength = 1.0 // seconds
)

type (
	// RenderParams are the parameters of the waveform renderer. NoteLength is
	// the length of every note in seconds; the note-offs of the MIDI file are
	// not used.
	RenderParams struct {
		SampleRate int
		NoteLength float64
	}

	// RenderStats summarizes a rendered buffer.
	RenderStats struct {
		Notes   int     // number of notes mixed
		Samples int     // length of the buffer
		Clipped int     // samples that were outside [-1, 1] before clipping
		Peak    float32 // largest absolute sample value before clipping
	}
)

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidNoteLength = errors.New("note length must be a positive number of seconds, at most 2^31-1 samples")
)

func DefaultRenderParams() RenderParams {
	return RenderParams{SampleRate: DefaultSampleRate, NoteLength: DefaultNoteLength}
}

func (p RenderParams) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidSampleRate, p.SampleRate)
	}
	if !(p.NoteLength > 0) || p.NoteLength*float64(p.SampleRate) > math.MaxInt32 {
		return fmt.Errorf("%w (got %v)", ErrInvalidNoteLength, p.NoteLength)
	}
	return nil
}

// BufferLength returns the number of samples needed for a piece lasting
// duration seconds.
func (p RenderParams) BufferLength(duration float64) int {
	return int(math.Round(duration * float64(p.SampleRate)))
}

// NoteSamples returns the number of samples in every note, at most
// math.MaxInt32.
func (p RenderParams) NoteSamples() int {
	return int(math.Round(min(p.NoteLength*float64(p.SampleRate), math.MaxInt32)))
}

// SineWave returns length samples of a unit amplitude sine starting at phase
// zero.
func SineWave(freq float64, length int, sampleRate int) AudioBuffer {
	ret := make(AudioBuffer, length)
	w := 2 * math.Pi * freq / float64(sampleRate)
	for i := range ret {
		ret[i] = float32(math.Sin(w * float64(i)))
	}
	return ret
}

// Mix allocates a buffer for the whole timeline and adds a sine wave for every
// note into it, starting at the sample nearest to the onset of the note. The
// buffer never grows: notes that would run past its end are cut. The result
// is not clipped.
//
// Mix panics if params are not valid.
func Mix(timeline Timeline, params RenderParams) AudioBuffer {
	if err := params.Validate(); err != nil {
		panic(fmt.Sprintf("moonlighter.Mix: %v", err))
	}
	buffer := make(AudioBuffer, params.BufferLength(timeline.Duration))
	noteSamples := params.NoteSamples()
	for note := range timeline.Notes {
		start := int(math.Round(note.Time * float64(params.SampleRate)))
		if start < 0 || start >= len(buffer) {
			continue
		}
		length := min(noteSamples, len(buffer)-start)
		wave := SineWave(note.Freq, length, params.SampleRate)
		vek32.Add_Inplace(buffer[start:start+length], wave)
	}
	return buffer
}

// Clip hard clips the buffer in place to [-1, 1] and returns how many samples
// were out of range.
func (b AudioBuffer) Clip() int {
	clipped := 0
	for _, v := range b {
		if v > 1 || v < -1 {
			clipped++
		}
	}
	if clipped > 0 {
		vek32.MinimumNumber_Inplace(b, 1)
		vek32.MaximumNumber_Inplace(b, -1)
	}
	return clipped
}

// Peak returns the largest absolute sample value.
func (b AudioBuffer) Peak() float32 {
	if len(b) == 0 {
		return 0
	}
	return max(vek32.Max(b), -vek32.Min(b))
}

// Render mixes the timeline and clips the result. It is deterministic: the
// same timeline and params always give the same samples.
func Render(timeline Timeline, params RenderParams) (AudioBuffer, RenderStats) {
	buffer := Mix(timeline, params)
	stats := RenderStats{
		Notes:   timeline.NumNotes(),
		Samples: len(buffer),
		Peak:    buffer.Peak(),
	}
	stats.Clipped = buffer.Clip()
	return buffer, stats
}
