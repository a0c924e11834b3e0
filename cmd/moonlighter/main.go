package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/moonlighter/moonlighter"
	"github.com/moonlighter/moonlighter/config"
	"github.com/moonlighter/moonlighter/console"
	"github.com/moonlighter/moonlighter/ffmpeg"
	"github.com/moonlighter/moonlighter/gomidi"
	"github.com/moonlighter/moonlighter/oto"
	"github.com/moonlighter/moonlighter/pianoroll"
	"github.com/moonlighter/moonlighter/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	help := flag.Bool("h", false, "Show help.")
	dump := flag.Bool("dump", false, "Export the rendered audio instead of playing it. The output path comes from the export template of the config file.")
	output := flag.String("o", "", "Output path of the exported audio, overriding the export template. Only valid with -dump and a single input. The extension selects the format; .wav and .raw are written without ffmpeg.")
	noteLength := flag.Float64("notelength", config.Default().NoteLength, "Length of every note in `seconds`.")
	sampleRate := flag.Int("samplerate", config.Default().SampleRate, "Sample rate of the rendered audio in `Hz`.")
	tuning := flag.Float64("tuning", config.Default().Tuning, "Frequency of A4 in `Hz`.")
	tempo := flag.String("tempo", config.Default().Tempo, "Tempo `mode`: per-track applies the tempo changes of a track to that track only, global applies the tempo changes of all tracks to every track.")
	notes := flag.Bool("notes", false, "Also write the resolved notes next to the output as .yml.")
	jsonNotes := flag.Bool("json", false, "Write the notes of -notes as .json instead of .yml.")
	roll := flag.Bool("roll", false, "Also write a piano roll of the notes next to the output as .png.")
	deploy := flag.Bool("deploy", false, "Download the first movement of the Moonlight Sonata to the working directory and process it.")
	debug := flag.Bool("debug", false, "Log the details of every piece.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.String())
		return 0
	}
	if (flag.NArg() == 0 && !*deploy) || *help {
		flag.Usage()
		return 0
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "moonlighter"})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("could not load config", "err", err)
		return 1
	}
	// flags given explicitly override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "notelength":
			cfg.NoteLength = *noteLength
		case "samplerate":
			cfg.SampleRate = *sampleRate
		case "tuning":
			cfg.Tuning = *tuning
		case "tempo":
			cfg.Tempo = *tempo
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid settings", "err", err)
		return 1
	}
	opts, err := cfg.Options()
	if err != nil {
		logger.Error("invalid settings", "err", err)
		return 1
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = log.WithContext(ctx, logger)
	retval := 0
	inputs := flag.Args()
	if *deploy {
		path, err := download(ctx, moonlightURL, ".")
		if err != nil {
			logger.Error("could not download the Moonlight Sonata", "err", err)
			return 1
		}
		console.Banner(os.Stdout, console.Title(path))
		inputs = append([]string{path}, inputs...)
	}
	files, err := expand(inputs)
	if err != nil {
		logger.Error("could not list inputs", "err", err)
		retval = 1
	}
	if *output != "" && (!*dump || len(files) != 1) {
		logger.Error("-o needs -dump and exactly one input file", "inputs", len(files))
		return 1
	}
	session := &moonlighter.Session{Options: opts, Skip: new(moonlighter.SkipSignal), Log: logger}
	if *dump {
		session.Exporter = ffmpeg.Exporter{
			Binary:  cfg.Export.FFmpeg,
			Bitrate: cfg.Export.Bitrate,
			PCM16:   cfg.Export.PCM16,
			KeepWav: cfg.Export.KeepWav,
		}
	} else if len(files) > 0 {
		audioContext, err := oto.NewContext(opts.Render.SampleRate)
		if err != nil {
			logger.Error("could not acquire oto AudioContext", "err", err)
			return 1
		}
		audioContext.PollInterval = cfg.PollInterval()
		session.Player = audioContext
		if console.Interactive(os.Stdin) {
			listener, err := console.Listen(os.Stdin, session.Skip)
			if err != nil {
				logger.Warn("skipping with enter is not available", "err", err)
			} else {
				defer listener.Close()
			}
		}
	}
	process := func(filename string) error {
		score, err := gomidi.ReadFile(filename)
		if err != nil {
			return err
		}
		target := *output
		if target == "" {
			if target, err = cfg.OutputPath(filename); err != nil {
				return err
			}
		}
		if *notes || *roll {
			timeline, err := moonlighter.Resolve(score, opts.Tuning, opts.Tempo)
			if err != nil {
				return fmt.Errorf("could not resolve timeline: %w", err)
			}
			base := strings.TrimSuffix(target, filepath.Ext(target))
			if *notes {
				path, err := writeNotes(base, filename, opts, timeline, *jsonNotes)
				if err != nil {
					return err
				}
				logger.Info("notes written", "path", path)
			}
			if *roll {
				rollOpts := pianoroll.DefaultOptions()
				rollOpts.NoteLength = opts.Render.NoteLength
				if err := pianoroll.Save(base+".png", timeline, rollOpts); err != nil {
					return err
				}
				logger.Info("piano roll written", "path", base+".png")
			}
		}
		if *dump {
			return session.Export(ctx, score, target)
		}
		console.HLine(os.Stdout, '-')
		fmt.Printf("Now playing: %v", console.Title(filename))
		if session.Player != nil && console.Interactive(os.Stdin) {
			fmt.Print(" (press enter to skip)")
		}
		fmt.Println()
		return session.Play(ctx, score)
	}
	for _, file := range files {
		err := process(file)
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "playback interrupted")
			return 1
		}
		if err != nil {
			logger.Error(fmt.Sprintf("could not process file %v", file), "err", err)
			retval = 1
		}
	}
	if !*dump && len(files) > 0 {
		console.HLine(os.Stdout, '-')
	}
	return retval
}

// expand replaces directories with the MIDI files in them. The error of a
// directory that cannot be listed is returned after the rest are expanded.
func expand(inputs []string) ([]string, error) {
	var files []string
	var errs []error
	for _, param := range inputs {
		info, err := os.Stat(param)
		if err != nil || !info.IsDir() {
			files = append(files, param)
			continue
		}
		for _, pattern := range []string{"*.mid", "*.midi"} {
			matches, err := filepath.Glob(filepath.Join(param, pattern))
			if err != nil {
				errs = append(errs, fmt.Errorf("could not glob the path %v for %v files: %w", param, pattern, err))
				continue
			}
			files = append(files, matches...)
		}
	}
	return files, errors.Join(errs...)
}

func printUsage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Moonlighter plays MIDI files as sine tones, or exports them as audio files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
	if dir, err := config.Dir(); err == nil {
		fmt.Fprintf(flag.CommandLine.Output(), "\nDefaults can be changed in %v\n", filepath.Join(dir, config.FileName))
	}
}
