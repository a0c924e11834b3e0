package console_test

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/moonlighter/moonlighter"
	"github.com/moonlighter/moonlighter/console"
)

func TestListenerRaisesSkipOnInput(t *testing.T) {
	pr, pw := io.Pipe()
	skip := new(moonlighter.SkipSignal)
	l, err := console.Listen(pr, skip)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	if skip.Raised() {
		t.Fatal("skip raised before any input")
	}
	if _, err := pw.Write([]byte("\n")); err != nil {
		t.Fatalf("could not write to pipe: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !skip.Raised() {
		if time.Now().After(deadline) {
			t.Fatal("skip was not raised after input")
		}
		time.Sleep(time.Millisecond)
	}
	pw.Close()
	if err := l.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"mond_1.mid":            "Mond 1",
		"/music/for-elise.midi": "For Elise",
		"gymnopedie__no_1.mid":  "Gymnopedie No 1",
		"already Titled":        "Already Titled",
	}
	for input, expected := range tests {
		if got := console.Title(input); got != expected {
			t.Errorf("Title(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestHLineFallsBackTo80Columns(t *testing.T) {
	var buf bytes.Buffer
	console.HLine(&buf, '-')
	if got := strings.TrimSuffix(buf.String(), "\n"); got != strings.Repeat("-", 80) {
		t.Errorf("expected 80 dashes, got %q", got)
	}
}

func TestBannerMentionsTitle(t *testing.T) {
	var buf bytes.Buffer
	console.Banner(&buf, "Mond 1")
	if !strings.Contains(buf.String(), "MOONLIGHTER") || !strings.Contains(buf.String(), "Mond 1") {
		t.Errorf("banner is missing the moon or the title:\n%s", buf.String())
	}
}
