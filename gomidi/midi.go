// Package gomidi reads Standard MIDI Files into moonlighter scores using
// gitlab.com/gomidi/midi/v2.
package gomidi

import (
	"fmt"
	"io"

	"github.com/moonlighter/moonlighter"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	statusMask   = 0xF0
	noteOnStatus = 0x90
	metaStatus   = 0xFF
	metaTempo    = 0x51
)

// ReadFile parses the MIDI file at path.
func ReadFile(path string) (moonlighter.Score, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return moonlighter.Score{}, fmt.Errorf("could not parse MIDI file %v: %w", path, err)
	}
	score, err := Convert(s)
	if err != nil {
		return moonlighter.Score{}, fmt.Errorf("invalid MIDI file %v: %w", path, err)
	}
	return score, nil
}

// Read parses a MIDI file from r.
func Read(r io.Reader) (moonlighter.Score, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return moonlighter.Score{}, fmt.Errorf("could not parse MIDI data: %w", err)
	}
	return Convert(s)
}

// Convert maps a parsed SMF to a score. Only files with a metric time format
// (ticks per quarter note) are supported; SMPTE based files are rejected with
// moonlighter.ErrInvalidTicksPerBeat.
func Convert(s *smf.SMF) (moonlighter.Score, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return moonlighter.Score{}, fmt.Errorf("%w: time format %v is not metric", moonlighter.ErrInvalidTicksPerBeat, s.TimeFormat)
	}
	score := moonlighter.Score{
		TicksPerBeat: int(ticks),
		Tracks:       make([]moonlighter.Track, len(s.Tracks)),
	}
	if err := score.Validate(); err != nil {
		return moonlighter.Score{}, err
	}
	for i, track := range s.Tracks {
		events := make(moonlighter.Track, len(track))
		for j, ev := range track {
			events[j] = convertEvent(ev.Delta, ev.Message)
		}
		score.Tracks[i] = events
	}
	return score, nil
}

func convertEvent(delta uint32, msg smf.Message) moonlighter.Event {
	b := []byte(msg)
	ev := moonlighter.Event{Delta: delta, Kind: moonlighter.EventOther}
	switch {
	case len(b) == 0:
	case b[0] == metaStatus:
		ev.Kind = moonlighter.EventMeta
		// the tempo is kept as raw microseconds per quarter; going through
		// BPM would round it
		if len(b) >= 6 && b[1] == metaTempo && b[2] == 3 {
			ev.Kind = moonlighter.EventTempo
			ev.Tempo = uint32(b[3])<<16 | uint32(b[4])<<8 | uint32(b[5])
		}
	case b[0]&statusMask == noteOnStatus && len(b) >= 3:
		ev.Kind = moonlighter.EventNoteOn
		ev.Key = b[1]
		ev.Velocity = b[2]
	}
	return ev
}
