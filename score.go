package moonlighter

import (
	"errors"
	"fmt"
)

type (
	// Score is the parsed MIDI event stream: the file-level tick resolution and
	// a list of tracks. A Score is produced by a MIDI reader (see package
	// gomidi) and is never modified afterwards; the resolver only reads it.
	Score struct {
		TicksPerBeat int // ticks per quarter note
		Tracks       []Track
	}

	// Track is an ordered list of events. The Delta of each event is relative
	// to the previous event in the same track.
	Track []Event

	// Event is a single timed message of a track. Key and Velocity are only
	// meaningful for EventNoteOn, Tempo only for EventTempo.
	Event struct {
		Delta    uint32 // ticks since the previous event in the track
		Kind     EventKind
		Key      uint8
		Velocity uint8
		Tempo    uint32 // microseconds per quarter note
	}

	EventKind int
)

const (
	EventOther EventKind = iota
	EventNoteOn
	EventTempo
	EventMeta
)

var ErrInvalidTicksPerBeat = errors.New("ticks per beat must be positive")

func (k EventKind) String() string {
	switch k {
	case EventNoteOn:
		return "note_on"
	case EventTempo:
		return "set_tempo"
	case EventMeta:
		return "meta"
	}
	return "other"
}

// Validate checks that the score can be converted from ticks to seconds.
func (s Score) Validate() error {
	if s.TicksPerBeat <= 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidTicksPerBeat, s.TicksPerBeat)
	}
	return nil
}

// NumEvents returns the total number of events over all tracks.
func (s Score) NumEvents() int {
	ret := 0
	for _, t := range s.Tracks {
		ret += len(t)
	}
	return ret
}

// NoteOn returns a note-on event.
func NoteOn(delta uint32, key, velocity uint8) Event {
	return Event{Delta: delta, Kind: EventNoteOn, Key: key, Velocity: velocity}
}

// SetTempo returns a tempo change event; tempo is in microseconds per quarter
// note.
func SetTempo(delta uint32, tempo uint32) Event {
	return Event{Delta: delta, Kind: EventTempo, Tempo: tempo}
}
