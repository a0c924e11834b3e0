package moonlighter

import (
	"context"
	"sync/atomic"
	"time"
)

type (
	// AudioBuffer is a mono buffer of float32 samples, nominally in the range
	// [-1, 1].
	AudioBuffer []float32

	// AudioPlayer plays a buffer through an audio device. Play blocks until
	// the buffer has been played, skip has been raised or ctx is done. Being
	// skipped is a normal way to end playback and is reported with skipped =
	// true and a nil error.
	AudioPlayer interface {
		Play(ctx context.Context, buffer AudioBuffer, sampleRate int, skip *SkipSignal) (skipped bool, err error)
	}

	// AudioExporter writes a buffer to an audio file; the format is chosen by
	// the exporter, typically from the extension of path.
	AudioExporter interface {
		Export(ctx context.Context, buffer AudioBuffer, sampleRate int, path string) error
	}

	// SkipSignal is a cooperative cancellation flag: one goroutine raises it
	// (e.g. on console input) and the playback loop polls it.
	SkipSignal struct {
		raised atomic.Bool
	}
)

// Duration returns the length of the buffer in time.
func (b AudioBuffer) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b)) / float64(sampleRate) * float64(time.Second))
}

func (s *SkipSignal) Raise() {
	s.raised.Store(true)
}

// Take reports whether the signal was raised and lowers it again.
func (s *SkipSignal) Take() bool {
	return s.raised.Swap(false)
}

func (s *SkipSignal) Raised() bool {
	return s.raised.Load()
}
