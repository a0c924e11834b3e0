package moonlighter_test

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/moonlighter/moonlighter"
)

func TestWavHeader(t *testing.T) {
	buffer := moonlighter.AudioBuffer{0, 0.5, -0.5, 1}
	tests := []struct {
		name           string
		pcm16          bool
		format         uint16
		bytesPerSample int
		dataOffset     int
	}{
		{"pcm16", true, 1, 2, 44},
		{"float32", false, 3, 4, 58},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wav, err := buffer.Wav(22050, test.pcm16)
			if err != nil {
				t.Fatalf("Wav failed: %v", err)
			}
			if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
				t.Fatalf("missing RIFF/WAVE tags")
			}
			if got := binary.LittleEndian.Uint16(wav[20:22]); got != test.format {
				t.Errorf("expected format %v, got %v", test.format, got)
			}
			if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
				t.Errorf("expected mono, got %v channels", got)
			}
			if got := binary.LittleEndian.Uint32(wav[24:28]); got != 22050 {
				t.Errorf("expected sample rate 22050, got %v", got)
			}
			if len(wav) != test.dataOffset+len(buffer)*test.bytesPerSample {
				t.Errorf("expected %v bytes, got %v", test.dataOffset+len(buffer)*test.bytesPerSample, len(wav))
			}
			if got := binary.LittleEndian.Uint32(wav[4:8]); int(got) != len(wav)-8 {
				t.Errorf("RIFF chunk size %v does not match file size %v", got, len(wav))
			}
		})
	}
}

func TestRawPCM16(t *testing.T) {
	raw, err := moonlighter.AudioBuffer{0, 1, -1, 2}.Raw(true)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	expected := []int16{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16}
	for i, e := range expected {
		if got := int16(binary.LittleEndian.Uint16(raw[2*i:])); got != e {
			t.Errorf("sample %v: expected %v, got %v", i, e, got)
		}
	}
}

func TestAudioBufferDuration(t *testing.T) {
	if d := make(moonlighter.AudioBuffer, 66150).Duration(44100); d != 1500*time.Millisecond {
		t.Errorf("expected 1.5 s, got %v", d)
	}
}

func TestSkipSignal(t *testing.T) {
	var s moonlighter.SkipSignal
	if s.Raised() || s.Take() {
		t.Fatal("a new signal should not be raised")
	}
	s.Raise()
	if !s.Raised() {
		t.Fatal("expected the signal to be raised")
	}
	if !s.Take() {
		t.Fatal("expected Take to see the raised signal")
	}
	if s.Take() {
		t.Fatal("expected Take to lower the signal")
	}
}
