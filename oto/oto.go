// Package oto plays audio buffers on the default output device using
// github.com/ebitengine/oto/v3.
package oto

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/moonlighter/moonlighter"
)

const DefaultPollInterval = 100 * time.Millisecond

type (
	// Context is the audio device. oto allows only one context per process,
	// so create it once at startup; its sample rate cannot change afterwards.
	Context struct {
		context    *oto.Context
		sampleRate int

		// PollInterval is how often a playing buffer checks whether it has
		// finished, been skipped or been cancelled.
		PollInterval time.Duration
	}

	player interface {
		Play()
		Pause()
		IsPlaying() bool
		Close() error
	}
)

// NewContext opens the default output device for mono float32 audio and
// waits until it is ready.
func NewContext(sampleRate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate, PollInterval: DefaultPollInterval}, nil
}

// Play implements moonlighter.AudioPlayer.
func (c *Context) Play(ctx context.Context, buffer moonlighter.AudioBuffer, sampleRate int, skip *moonlighter.SkipSignal) (skipped bool, err error) {
	if sampleRate != c.sampleRate {
		return false, fmt.Errorf("cannot play %v Hz audio on a %v Hz oto context", sampleRate, c.sampleRate)
	}
	data := FloatBufferToBytes(buffer, make([]byte, 0, 4*len(buffer)))
	p := c.context.NewPlayer(bytes.NewReader(data))
	return wait(ctx, p, skip, c.PollInterval)
}

// wait starts the player and blocks until it stops playing on its own, the
// skip signal is raised or ctx is done, checking every interval.
func wait(ctx context.Context, p player, skip *moonlighter.SkipSignal, interval time.Duration) (skipped bool, err error) {
	defer func() {
		if cerr := p.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot close oto player: %w", cerr)
		}
	}()
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	p.Play()
	for p.IsPlaying() {
		select {
		case <-ctx.Done():
			p.Pause()
			return false, ctx.Err()
		case <-ticker.C:
			if skip != nil && skip.Take() {
				p.Pause()
				return true, nil
			}
		}
	}
	return false, nil
}
