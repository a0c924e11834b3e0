// Package ffmpeg exports audio buffers to files. WAV and headerless .raw
// files are written directly; any other format is encoded by the ffmpeg
// command line tool from an intermediate WAV file.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/moonlighter/moonlighter"
)

type Exporter struct {
	Binary  string // ffmpeg executable; "ffmpeg" if empty
	Bitrate string // e.g. "192k"; ffmpeg's default if empty
	PCM16   bool   // intermediate, .wav and .raw outputs as 16-bit PCM instead of float32
	KeepWav bool   // keep the intermediate .wav next to the output
}

// Export implements moonlighter.AudioExporter.
func (e Exporter) Export(ctx context.Context, buffer moonlighter.AudioBuffer, sampleRate int, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".raw") {
		raw, err := buffer.Raw(e.PCM16)
		if err != nil {
			return fmt.Errorf("could not generate .raw file: %v", err)
		}
		return writeFile(path, raw)
	}
	wav, err := buffer.Wav(sampleRate, e.PCM16)
	if err != nil {
		return fmt.Errorf("could not generate .wav file: %v", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return writeFile(path, wav)
	}
	tmp, err := e.writeIntermediate(path, wav)
	if err != nil {
		return err
	}
	if !e.KeepWav {
		defer os.Remove(tmp)
	}
	return e.encode(ctx, tmp, path)
}

func (e Exporter) writeIntermediate(path string, wav []byte) (string, error) {
	if e.KeepWav {
		name := strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
		return name, writeFile(name, wav)
	}
	f, err := os.CreateTemp("", "moonlighter-*.wav")
	if err != nil {
		return "", fmt.Errorf("could not create temporary .wav file: %v", err)
	}
	if _, err := f.Write(wav); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("could not write temporary .wav file: %v", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("could not close temporary .wav file: %v", err)
	}
	return f.Name(), nil
}

// Args returns the ffmpeg arguments to encode the wav file input into output.
func (e Exporter) Args(input, output string) []string {
	args := []string{"-y", "-loglevel", "error", "-i", input}
	if e.Bitrate != "" {
		args = append(args, "-b:a", e.Bitrate)
	}
	return append(args, output)
}

func (e Exporter) encode(ctx context.Context, input, output string) error {
	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	args := e.Args(input, output)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("encoding of %v interrupted: %w", output, ctxErr)
		}
		fullCmd := bin + " " + strings.Join(args, " ")
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("error executing %s: %w: %s", fullCmd, err, msg)
		}
		return fmt.Errorf("error executing %s: %w", fullCmd, err)
	}
	return nil
}

func writeFile(path string, contents []byte) error {
	if err := os.WriteFile(path, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", path, err)
	}
	return nil
}
