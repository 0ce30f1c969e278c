package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alexandrapadonou/tagStackoverflow/internal/monitor"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 60 * time.Second
	DefaultChunkSize      = 1 << 20

	progressEvery = 10 << 20
	archiveName   = "bundle.zip"
)

type FetcherConfig struct {
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for response headers and for each read of
	// the body.
	ReadTimeout time.Duration
	ChunkSize   int
}

// Fetcher downloads a zipped bundle and publishes it into a local directory.
type Fetcher struct {
	client    *http.Client
	cfg       FetcherConfig
	logger    *slog.Logger
	freeSpace func(path string) (uint64, error)
}

func NewFetcher(cfg FetcherConfig, logger *slog.Logger) *Fetcher {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}

	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		// Archives are already compressed.
		DisableCompression: true,
	}

	return &Fetcher{
		client:    &http.Client{Transport: transport},
		cfg:       cfg,
		logger:    logger,
		freeSpace: monitor.DiskFree,
	}
}

// Fetch downloads the archive at rawURL, extracts and validates it in a
// staging directory next to destination, then publishes it as destination.
// On failure destination is left as it was.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destination string) (*Bundle, error) {
	redacted := RedactURL(rawURL)
	destination = filepath.Clean(destination)
	parent := filepath.Dir(destination)

	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, &ExtractionError{Op: "create parent", Path: parent, Err: err}
	}

	staging, err := os.MkdirTemp(parent, ".tagger-staging-*")
	if err != nil {
		return nil, &ExtractionError{Op: "create staging", Path: parent, Err: err}
	}
	defer func() {
		if err := os.RemoveAll(staging); err != nil {
			f.logger.Warn("failed to remove staging directory", "path", staging, "error", err)
		}
	}()

	f.logger.Info("downloading model bundle", "url", redacted, "destination", destination)
	start := time.Now()

	archive := filepath.Join(staging, archiveName)
	n, err := f.download(ctx, rawURL, archive)
	if err != nil {
		return nil, err
	}

	f.logger.Info("download complete",
		"size", humanize.IBytes(uint64(n)),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	extracted := filepath.Join(staging, "extract")
	if err := extractZip(archive, extracted); err != nil {
		return nil, err
	}
	if err := os.Remove(archive); err != nil {
		return nil, &ExtractionError{Op: "remove archive", Path: archive, Err: err}
	}

	staged := filepath.Join(staging, "bundle")
	if err := collectBundle(extracted, staged); err != nil {
		return nil, err
	}

	if err := Validate(staged); err != nil {
		return nil, err
	}

	if err := publish(staged, destination, f.logger); err != nil {
		return nil, err
	}

	f.logger.Info("model bundle published", "dir", destination)

	return &Bundle{Dir: destination, Strategy: StrategyRemote, Downloaded: n}, nil
}

func (f *Fetcher) download(ctx context.Context, rawURL, path string) (int64, error) {
	redacted := RedactURL(rawURL)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &NetworkError{URL: redacted, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, f.classify(redacted, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, &NetworkError{URL: redacted, StatusCode: resp.StatusCode}
	}

	if resp.ContentLength > 0 {
		if err := f.checkSpace(filepath.Dir(path), resp.ContentLength); err != nil {
			return 0, err
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return 0, &ExtractionError{Op: "create archive", Path: path, Err: err}
	}

	body := newIdleReader(resp.Body, f.cfg.ReadTimeout, cancel)
	defer body.stop()

	w := &progressWriter{
		w:      out,
		total:  resp.ContentLength,
		next:   progressEvery,
		logger: f.logger,
	}

	n, copyErr := io.CopyBuffer(w, body, make([]byte, f.cfg.ChunkSize))
	closeErr := out.Close()

	if copyErr != nil {
		_ = os.Remove(path)
		if body.fired.Load() {
			return n, &FetchTimeoutError{URL: redacted, Phase: "read", Timeout: f.cfg.ReadTimeout, Err: copyErr}
		}
		var we *writeError
		if errors.As(copyErr, &we) {
			return n, &ExtractionError{Op: "write archive", Path: path, Err: we.err}
		}
		return n, f.classify(redacted, copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return n, &ExtractionError{Op: "write archive", Path: path, Err: closeErr}
	}

	if resp.ContentLength > 0 && n != resp.ContentLength {
		_ = os.Remove(path)
		return n, &NetworkError{
			URL: redacted,
			Err: fmt.Errorf("short body: got %d of %d bytes", n, resp.ContentLength),
		}
	}

	return n, nil
}

func (f *Fetcher) checkSpace(dir string, size int64) error {
	free, err := f.freeSpace(dir)
	if err != nil {
		f.logger.Debug("disk space check unavailable", "path", dir, "error", err)
		return nil
	}
	need := uint64(size) * 2
	if free < need {
		return &ExtractionError{
			Op:   "preflight",
			Path: dir,
			Err: fmt.Errorf("need %s free, have %s",
				humanize.IBytes(need), humanize.IBytes(free)),
		}
	}
	return nil
}

// classify maps transport errors onto the fetch error types.
func (f *Fetcher) classify(redacted string, err error) error {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" && opErr.Timeout() {
		return &FetchTimeoutError{URL: redacted, Phase: "connect", Timeout: f.cfg.ConnectTimeout, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &FetchTimeoutError{URL: redacted, Phase: "read", Timeout: f.cfg.ReadTimeout, Err: err}
	}

	return &NetworkError{URL: redacted, Err: err}
}

// idleReader cancels the request when no read completes within timeout.
type idleReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
	fired   atomic.Bool
}

func newIdleReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *idleReader {
	ir := &idleReader{r: r, timeout: timeout}
	ir.timer = time.AfterFunc(timeout, func() {
		ir.fired.Store(true)
		cancel()
	})
	return ir
}

func (ir *idleReader) Read(p []byte) (int, error) {
	n, err := ir.r.Read(p)
	if n > 0 && !ir.fired.Load() {
		ir.timer.Reset(ir.timeout)
	}
	return n, err
}

func (ir *idleReader) stop() {
	ir.timer.Stop()
}

type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }

type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	next    int64
	logger  *slog.Logger
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if err != nil {
		return n, &writeError{err: err}
	}

	if p.written >= p.next {
		attrs := []any{"downloaded", humanize.IBytes(uint64(p.written))}
		if p.total > 0 {
			attrs = append(attrs,
				"total", humanize.IBytes(uint64(p.total)),
				"percent", fmt.Sprintf("%.0f", float64(p.written)*100/float64(p.total)),
			)
		}
		p.logger.Info("download progress", attrs...)
		p.next += progressEvery
	}
	return n, nil
}
