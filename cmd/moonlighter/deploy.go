package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const moonlightURL = "http://www.piano-midi.de/midis/beethoven/mond_1.mid"

// download fetches url into dir, keeping the file name of the url. A file that
// is already there is not downloaded again.
func download(ctx context.Context, url, dir string) (string, error) {
	logger := log.FromContext(ctx)
	target := filepath.Join(dir, path.Base(url))
	if _, err := os.Stat(target); err == nil {
		logger.Debug("already downloaded", "path", target)
		return target, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not get %v: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("could not get %v: %v", url, resp.Status)
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("could not create file in %v: %w", dir, err)
	}
	defer os.Remove(tmp.Name())
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("could not download %v: %w", url, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("could not save %v: %w", target, err)
	}
	logger.Info("downloaded", "path", target, "bytes", n)
	return target, nil
}
