// Package console holds the terminal side of the player: the listener that
// skips the current piece on input, and the banner and rule lines printed
// around the output.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/moonlighter/moonlighter"
	"github.com/muesli/cancelreader"
)

// Listener raises a skip signal whenever a read from its input returns data.
type Listener struct {
	reader cancelreader.CancelReader
	skip   *moonlighter.SkipSignal
	done   chan struct{}
}

// Interactive reports whether f is a terminal, i.e. whether there is a user
// who could type something to skip.
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Listen starts a goroutine blocking on reads from in. Any input raises skip.
func Listen(in io.Reader, skip *moonlighter.SkipSignal) (*Listener, error) {
	r, err := cancelreader.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("cannot listen to console input: %w", err)
	}
	l := &Listener{reader: r, skip: skip, done: make(chan struct{})}
	go l.run()
	return l, nil
}

func (l *Listener) run() {
	defer close(l.done)
	buf := make([]byte, 256)
	for {
		n, err := l.reader.Read(buf)
		if n > 0 {
			l.skip.Raise()
		}
		if err != nil {
			return
		}
	}
}

// Close stops listening. When the platform cannot cancel a pending read, the
// goroutine stays blocked until the next input or the end of the input.
func (l *Listener) Close() error {
	if l.reader.Cancel() {
		<-l.done
	}
	return l.reader.Close()
}
