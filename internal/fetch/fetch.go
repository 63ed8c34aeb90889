// Package fetch retrieves pages over plain HTTP with block detection and
// bounded retries. Everything downstream works on the FetchedPage it
// produces.
package fetch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadpilot/impressum-cli/internal/config"
	"github.com/leadpilot/impressum-cli/internal/model"
	"github.com/leadpilot/impressum-cli/internal/resilience"
	"github.com/leadpilot/impressum-cli/internal/textnorm"
)

// Fetcher retrieves one page. Implementations must be safe for concurrent
// use.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
}

// HTTPFetcher is the standard net/http implementation.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	retry        resilience.RetryConfig
}

// NewHTTPFetcher builds a fetcher from config. An explicit CA bundle and
// the insecure toggle cover the self-signed certificates common on small
// business sites.
func NewHTTPFetcher(cfg config.FetchConfig) (*HTTPFetcher, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // operator opt-in
	}
	if cfg.CABundlePath != "" {
		pem, err := os.ReadFile(cfg.CABundlePath)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: read ca bundle")
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, eris.Errorf("fetch: no certificates in %s", cfg.CABundlePath)
		}
		tlsCfg.RootCAs = pool
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 512 * 1024
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		retry.MaxAttempts = cfg.MaxRetries + 1
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig:     tlsCfg,
			},
		},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: maxBody,
		retry:        retry,
	}, nil
}

// Fetch retrieves a URL, retrying transient failures, and returns the
// page with both raw HTML and stripped text.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.FetchedPage, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}

	retry := f.retry
	retry.OnRetry = resilience.RetryLogger("fetch", normalized)
	page, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*model.FetchedPage, error) {
		return f.fetchOnce(ctx, normalized)
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, targetURL string) (*model.FetchedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "fetch: execute request"))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "fetch: read body"))
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Errorf("fetch: blocked (%s) at %s", blockType, targetURL)
	}

	if resp.StatusCode >= 400 {
		err := eris.Errorf("fetch: status %d at %s", resp.StatusCode, targetURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.Transient(err)
		}
		return nil, err
	}

	html := string(body)
	page := &model.FetchedPage{
		URL:        targetURL,
		FinalURL:   resp.Request.URL.String(),
		Title:      ExtractTitle(html),
		HTML:       html,
		Text:       textnorm.CleanText(StripHTML(html)),
		StatusCode: resp.StatusCode,
	}
	zap.L().Debug("fetch: page retrieved",
		zap.String("url", targetURL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))
	return page, nil
}

// Exists probes a URL with HEAD, falling back to GET for servers that
// reject HEAD. Used by discovery path probing.
func (f *HTTPFetcher) Exists(ctx context.Context, url string) bool {
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return false
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return true
		case resp.StatusCode == http.StatusMethodNotAllowed && method == http.MethodHead:
			continue
		default:
			return false
		}
	}
	return false
}
