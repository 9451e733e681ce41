package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/quizpipe/core"
	"github.com/poiesic/quizpipe/executor"
)

// DownloaderConfig holds the yt-dlp settings.
type DownloaderConfig struct {
	BinaryPath   string // Default: yt-dlp
	OutputDir    string
	AudioFormat  string // Default: m4a
	AudioQuality string // Default: 192K
	// Workers is the number of concurrent downloads. Default: 1
	Workers int
}

func (c *DownloaderConfig) applyDefaults() {
	if c.BinaryPath == "" {
		c.BinaryPath = "yt-dlp"
	}
	if c.AudioFormat == "" {
		c.AudioFormat = "m4a"
	}
	if c.AudioQuality == "" {
		c.AudioQuality = "192K"
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
}

// Downloader extracts audio tracks from URLs into the source directory.
type Downloader struct {
	exec   executor.Executor
	cfg    DownloaderConfig
	pool   *ants.Pool
	logger *slog.Logger
}

// NewDownloader creates a downloader. Release must be called when done.
func NewDownloader(exec executor.Executor, cfg DownloaderConfig, opts ...Option) (*Downloader, error) {
	if exec == nil {
		return nil, ErrExecutorRequired
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: download directory is required", core.ErrInvalidConfiguration)
	}
	cfg.applyDefaults()

	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &Downloader{
		exec:   exec,
		cfg:    cfg,
		pool:   pool,
		logger: o.logger.With("component", "downloader"),
	}, nil
}

// Download fetches every URL. Blank URLs are skipped. Per-URL failures are
// logged and returned in failed; both lists keep the input order. The error
// is ctx's when the run was cancelled before every URL was started.
func (d *Downloader) Download(ctx context.Context, urls []string) (succeeded, failed []string, err error) {
	ok := make([]bool, len(urls))
	started := make([]bool, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			d.logger.Warn("skipping blank url", "position", i)
			continue
		}
		if err = ctx.Err(); err != nil {
			break
		}

		wg.Add(1)
		submitErr := d.pool.Submit(func() {
			defer wg.Done()
			ok[i] = d.download(ctx, url)
		})
		if submitErr != nil {
			wg.Done()
			d.logger.Error("download not scheduled", "url", url, "error", submitErr)
		}
		started[i] = true
	}
	wg.Wait()

	for i, url := range urls {
		if !started[i] {
			continue
		}
		if ok[i] {
			succeeded = append(succeeded, strings.TrimSpace(url))
		} else {
			failed = append(failed, strings.TrimSpace(url))
		}
	}

	d.logger.Info("downloads finished", "succeeded", len(succeeded), "failed", len(failed))
	return succeeded, failed, err
}

func (d *Downloader) download(ctx context.Context, url string) bool {
	d.logger.Info("downloading", "url", url)
	_, err := d.exec.Execute(ctx, d.cfg.BinaryPath, d.args(url)...)
	if err != nil {
		d.logger.Error("download failed", "url", url, "error", err)
		return false
	}
	d.logger.Info("download complete", "url", url)
	return true
}

func (d *Downloader) args(url string) []string {
	return []string{
		"--format", "bestaudio/best",
		"--no-overwrites",
		"--extract-audio",
		"--audio-format", d.cfg.AudioFormat,
		"--audio-quality", d.cfg.AudioQuality,
		"--output", filepath.Join(d.cfg.OutputDir, "%(title)s.%(ext)s"),
		"--", url,
	}
}

// Release stops the worker pool.
func (d *Downloader) Release() {
	d.pool.Release()
}
