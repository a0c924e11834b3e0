package moonlighter

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

type (
	// Options controls how a score is turned into audio.
	Options struct {
		Render RenderParams
		Tuning float64
		Tempo  TempoMode
	}

	// Session renders scores and hands the buffers to the player or the
	// exporter. The host creates the devices once and injects them; either may
	// be nil if that kind of output is never requested.
	Session struct {
		Options  Options
		Player   AudioPlayer
		Exporter AudioExporter
		Skip     *SkipSignal
		Log      *log.Logger
	}
)

var ErrNoOutput = errors.New("no audio output configured")

func DefaultOptions() Options {
	return Options{Render: DefaultRenderParams(), Tuning: DefaultTuning, Tempo: TempoPerTrack}
}

func (o Options) Validate() error {
	if err := o.Render.Validate(); err != nil {
		return err
	}
	if !(o.Tuning > 0) {
		return fmt.Errorf("%w (got %v)", ErrInvalidTuning, o.Tuning)
	}
	return nil
}

// Render resolves the score and renders it into a clipped buffer.
func (s *Session) Render(score Score) (Timeline, AudioBuffer, RenderStats, error) {
	if err := s.Options.Validate(); err != nil {
		return Timeline{}, nil, RenderStats{}, err
	}
	timeline, err := Resolve(score, s.Options.Tuning, s.Options.Tempo)
	if err != nil {
		return Timeline{}, nil, RenderStats{}, fmt.Errorf("could not resolve timeline: %w", err)
	}
	buffer, stats := Render(timeline, s.Options.Render)
	s.logger().Debug("rendered",
		"tracks", len(score.Tracks),
		"events", score.NumEvents(),
		"notes", stats.Notes,
		"duration", buffer.Duration(s.Options.Render.SampleRate),
		"peak", stats.Peak,
		"clipped", stats.Clipped)
	return timeline, buffer, stats, nil
}

// Play renders the score and plays it. A skip ends the playback early but is
// not an error.
func (s *Session) Play(ctx context.Context, score Score) error {
	if s.Player == nil {
		return ErrNoOutput
	}
	_, buffer, _, err := s.Render(score)
	if err != nil {
		return err
	}
	skip := s.Skip
	if skip == nil {
		skip = new(SkipSignal)
	}
	skip.Take() // input typed during rendering should not skip this piece
	skipped, err := s.Player.Play(ctx, buffer, s.Options.Render.SampleRate, skip)
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	if skipped {
		s.logger().Info("playback skipped")
	}
	return nil
}

// Export renders the score and writes it to path.
func (s *Session) Export(ctx context.Context, score Score, path string) error {
	if s.Exporter == nil {
		return ErrNoOutput
	}
	_, buffer, _, err := s.Render(score)
	if err != nil {
		return err
	}
	if err := s.Exporter.Export(ctx, buffer, s.Options.Render.SampleRate, path); err != nil {
		return fmt.Errorf("could not export %v: %w", path, err)
	}
	s.logger().Info("audio dumped", "path", path)
	return nil
}

func (s *Session) logger() *log.Logger {
	if s.Log == nil {
		return log.Default()
	}
	return s.Log
}
