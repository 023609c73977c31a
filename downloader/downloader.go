// Package downloader implements the remote media downloader contract
// (§6): fetch a source URL to a local MP4, retrying transient failures
// and categorizing permanent ones for the caller.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/clipforge/viralclip/config"
	caterrs "github.com/clipforge/viralclip/errors"
	"github.com/clipforge/viralclip/log"
	"github.com/clipforge/viralclip/metrics"
	"github.com/hashicorp/go-retryablehttp"
)

// Downloader fetches a remote source to a local file with a plain HTTP
// GET, writing the response body as-is. It does not merge separate
// audio and video streams into one MP4.
type Downloader struct {
	httpClient *http.Client
}

func New() *Downloader {
	client := retryablehttp.NewClient()
	client.RetryMax = 0 // retries are handled by our own backoff, for categorized errors
	client.Logger = log.NewRetryableHTTPLogger()
	client.HTTPClient = &http.Client{Timeout: config.DownloadTimeout}

	return &Downloader{httpClient: client.StandardClient()}
}

// Download fetches url into destTemplate's directory, returning the
// absolute path written and a derived base name for downstream naming.
// It makes at most config.DownloadMaxAttempts attempts in total,
// retrying only on transient failure.
func (d *Downloader) Download(ctx context.Context, jobID, url, destTemplate string) (absolutePath, baseName string, err error) {
	baseName = deriveBaseName(url)
	dest := filepath.Join(filepath.Dir(destTemplate), baseName+".mp4")

	operation := func() error {
		innerErr := d.downloadOnce(ctx, jobID, url, dest)
		if innerErr == nil {
			return nil
		}
		if de, ok := caterrs.IsDownloadError(innerErr); ok {
			switch de.Category {
			case caterrs.DownloadUnavailable, caterrs.DownloadRestricted:
				return backoff.Permanent(innerErr)
			}
		}
		return innerErr
	}

	backOff := backoff.NewExponentialBackOff()
	backOff.InitialInterval = config.DownloadRetryBackoff
	backOff.MaxInterval = config.DownloadRetryBackoff * 4
	backOff.MaxElapsedTime = 0

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		metrics.Metrics.Client.RetryCount.WithLabelValues(hostOf(url)).Set(float64(attempt))
		log.LogError(jobID, fmt.Sprintf("download attempt %d failed, retrying in %s", attempt, wait), err)
	}

	err = backoff.RetryNotify(operation, backoff.WithMaxRetries(backOff, config.DownloadMaxAttempts-1), notify)
	if err != nil {
		return "", "", err
	}
	return dest, baseName, nil
}

func (d *Downloader) downloadOnce(ctx context.Context, jobID, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return caterrs.NewDownloadError(caterrs.DownloadUnknown, err)
	}

	resp, err := metrics.MonitorRequest(metrics.Metrics.Client, d.httpClient, req)
	if err != nil {
		if ctx.Err() != nil {
			return caterrs.NewDownloadError(caterrs.DownloadTimeout, err)
		}
		return caterrs.NewDownloadError(caterrs.DownloadUnknown, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return caterrs.NewDownloadError(caterrs.DownloadUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnavailableForLegalReasons:
		return caterrs.NewDownloadError(caterrs.DownloadRestricted, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return caterrs.NewDownloadError(caterrs.DownloadUnknown, fmt.Errorf("status %d", resp.StatusCode))
	}

	out, err := os.Create(dest)
	if err != nil {
		return caterrs.NewDownloadError(caterrs.DownloadUnknown, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return caterrs.NewDownloadError(caterrs.DownloadUnknown, err)
	}

	log.Log(jobID, "downloaded source", "url", url, "dest", dest)
	return nil
}

func deriveBaseName(rawURL string) string {
	base := filepath.Base(rawURL)
	base = strings.SplitN(base, "?", 2)[0]
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "source"
	}
	return base
}

func hostOf(rawURL string) string {
	if idx := strings.Index(rawURL, "://"); idx >= 0 {
		rest := rawURL[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[:slash]
		}
		return rest
	}
	return rawURL
}
