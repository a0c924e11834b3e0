package moonlighter

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
)

const (
	DefaultTempo  = 500000 // microseconds per quarter note, i.e. 120 BPM
	DefaultTuning = 438.0  // frequency of A4 (key 69) in Hz
)

type (
	// Note is a resolved note-on event: when it starts and at which frequency
	// it sounds. Key and Track tell where it came from.
	Note struct {
		Time  float64 `yaml:"time" json:"time"` // onset in seconds from the start of the piece
		Freq  float64 `yaml:"freq" json:"freq"` // fundamental frequency in Hz
		Key   uint8   `yaml:"key" json:"key"`
		Track int     `yaml:"track" json:"track"`
	}

	// Timeline is the outcome of resolving a Score: the total duration of the
	// piece and, for each track of the score, its notes in order.
	Timeline struct {
		Duration float64  `yaml:"duration" json:"duration"`
		Tracks   [][]Note `yaml:"tracks" json:"tracks"`
	}

	// TempoMode tells how tempo changes affect the tracks of a score.
	TempoMode int

	// clock converts the events of one track into absolute seconds, calling
	// visit for every event in order, and returns the time of the last event.
	clock interface {
		walk(track Track, visit func(ev Event, t float64)) float64
	}

	perTrackClock struct {
		ticksPerBeat int
	}

	// tempoMap is the file-wide tempo timeline used by TempoGlobal. Entry i
	// says that from tick ticks[i] on (which is at secs[i] seconds), the tempo
	// is tempos[i].
	tempoMap struct {
		ticksPerBeat int
		ticks        []uint64
		secs         []float64
		tempos       []uint32
	}
)

const (
	// TempoPerTrack restarts every track from DefaultTempo and applies only
	// the tempo changes found in that same track.
	TempoPerTrack TempoMode = iota
	// TempoGlobal merges the tempo changes of all tracks into one tempo map
	// that applies to every track.
	TempoGlobal
)

var ErrInvalidTuning = errors.New("tuning must be a positive frequency")

func ParseTempoMode(s string) (TempoMode, error) {
	switch s {
	case "per-track", "":
		return TempoPerTrack, nil
	case "global":
		return TempoGlobal, nil
	}
	return TempoPerTrack, fmt.Errorf("unknown tempo mode %q, expected per-track or global", s)
}

func (m TempoMode) String() string {
	if m == TempoGlobal {
		return "global"
	}
	return "per-track"
}

// TicksToSeconds converts a tick delta to seconds at the given tempo
// (microseconds per quarter note).
func TicksToSeconds(ticks uint32, ticksPerBeat int, tempo uint32) float64 {
	return ticksToSeconds(float64(ticks), ticksPerBeat, tempo)
}

func ticksToSeconds(ticks float64, ticksPerBeat int, tempo uint32) float64 {
	return ticks / float64(ticksPerBeat) * (float64(tempo) / 1000000.0)
}

// NoteFrequency returns the equal-tempered frequency of a MIDI key, with key
// 69 (A4) tuned to the given frequency.
func NoteFrequency(key uint8, tuning float64) float64 {
	return tuning * math.Pow(2, (float64(key)-69)/12)
}

// Duration returns the time of the latest event over all tracks of the
// score. It is the first of the two passes over the score: the renderer needs
// it to size the sample buffer before any note is written.
func Duration(score Score, mode TempoMode) (float64, error) {
	c, err := newClock(score, mode)
	if err != nil {
		return 0, err
	}
	var duration float64
	for _, track := range score.Tracks {
		c.walk(track, func(_ Event, t float64) {
			duration = max(duration, t)
		})
	}
	return duration, nil
}

// Resolve converts the note-on events of the score into notes with absolute
// onset times. Only note-ons with a non-zero velocity produce notes; note-offs
// are ignored, since every note is rendered with the same length.
//
// Resolve runs Duration first and then walks the score again with a freshly
// initialized clock, so both passes see exactly the same event times.
func Resolve(score Score, tuning float64, mode TempoMode) (Timeline, error) {
	if !(tuning > 0) || math.IsInf(tuning, 0) {
		return Timeline{}, fmt.Errorf("%w (got %v)", ErrInvalidTuning, tuning)
	}
	duration, err := Duration(score, mode)
	if err != nil {
		return Timeline{}, err
	}
	c, err := newClock(score, mode)
	if err != nil {
		return Timeline{}, err
	}
	ret := Timeline{Duration: duration, Tracks: make([][]Note, len(score.Tracks))}
	for i, track := range score.Tracks {
		notes := make([]Note, 0)
		c.walk(track, func(ev Event, t float64) {
			if ev.Kind != EventNoteOn || ev.Velocity == 0 {
				return
			}
			notes = append(notes, Note{Time: t, Freq: NoteFrequency(ev.Key, tuning), Key: ev.Key, Track: i})
		})
		ret.Tracks[i] = notes
	}
	return ret, nil
}

// NumNotes returns the number of notes over all tracks.
func (t Timeline) NumNotes() int {
	ret := 0
	for _, notes := range t.Tracks {
		ret += len(notes)
	}
	return ret
}

// Notes yields every note, track by track, in the order they will be mixed.
func (t Timeline) Notes(yield func(Note) bool) {
	for _, notes := range t.Tracks {
		for _, n := range notes {
			if !yield(n) {
				return
			}
		}
	}
}

func newClock(score Score, mode TempoMode) (clock, error) {
	if err := score.Validate(); err != nil {
		return nil, err
	}
	switch mode {
	case TempoPerTrack:
		return perTrackClock{ticksPerBeat: score.TicksPerBeat}, nil
	case TempoGlobal:
		return newTempoMap(score), nil
	}
	return nil, fmt.Errorf("unknown tempo mode %d", int(mode))
}

// walk advances the running time by each delta under the tempo in effect
// before the event; a tempo change takes effect for the deltas after it.
func (c perTrackClock) walk(track Track, visit func(ev Event, t float64)) float64 {
	tempo := uint32(DefaultTempo)
	var now float64
	for _, ev := range track {
		now += TicksToSeconds(ev.Delta, c.ticksPerBeat, tempo)
		if ev.Kind == EventTempo {
			tempo = ev.Tempo
		}
		visit(ev, now)
	}
	return now
}

func newTempoMap(score Score) *tempoMap {
	type change struct {
		tick  uint64
		tempo uint32
	}
	var changes []change
	for _, track := range score.Tracks {
		var tick uint64
		for _, ev := range track {
			tick += uint64(ev.Delta)
			if ev.Kind == EventTempo {
				changes = append(changes, change{tick: tick, tempo: ev.Tempo})
			}
		}
	}
	// stable, so that changes at the same tick keep the track order and the
	// last one wins
	slices.SortStableFunc(changes, func(a, b change) int { return cmp.Compare(a.tick, b.tick) })
	m := &tempoMap{
		ticksPerBeat: score.TicksPerBeat,
		ticks:        []uint64{0},
		secs:         []float64{0},
		tempos:       []uint32{DefaultTempo},
	}
	for _, c := range changes {
		last := len(m.ticks) - 1
		if c.tick == m.ticks[last] {
			m.tempos[last] = c.tempo
			continue
		}
		m.secs = append(m.secs, m.secs[last]+ticksToSeconds(float64(c.tick-m.ticks[last]), m.ticksPerBeat, m.tempos[last]))
		m.ticks = append(m.ticks, c.tick)
		m.tempos = append(m.tempos, c.tempo)
	}
	return m
}

func (m *tempoMap) seconds(tick uint64) float64 {
	i := sort.Search(len(m.ticks), func(i int) bool { return m.ticks[i] > tick }) - 1
	return m.secs[i] + ticksToSeconds(float64(tick-m.ticks[i]), m.ticksPerBeat, m.tempos[i])
}

func (m *tempoMap) walk(track Track, visit func(ev Event, t float64)) float64 {
	var tick uint64
	var now float64
	for _, ev := range track {
		tick += uint64(ev.Delta)
		now = m.seconds(tick)
		visit(ev, now)
	}
	return now
}
