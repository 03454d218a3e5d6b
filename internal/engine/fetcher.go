package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tartampluch/famcal/internal/config"
)

// SourceFetcher defines the contract for retrieving a remote source.
// This interface allows for mocking in tests and decoupling from the network layer.
type SourceFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// Committer is implemented by fetched bodies that are only cached once the
// caller confirms they decoded. A body that fails to decode is never
// committed, so the cache keeps the last good payload.
type Committer interface {
	Commit() error
}

// HTTPFetcher implements SourceFetcher using net/http. When Cache is set
// it sends conditional requests and falls back to the cached payload if
// the remote store is unreachable.
type HTTPFetcher struct {
	Client *http.Client
	Cache  *Cache
	// MaxBytes caps the response body. Zero means config.MaxHTTPResponseSize.
	MaxBytes int64
}

// NewHTTPFetcher creates a new instance of HTTPFetcher with configured timeouts.
// cache may be nil.
func NewHTTPFetcher(cache *Cache) *HTTPFetcher {
	return &HTTPFetcher{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		Cache:    cache,
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

func (f *HTTPFetcher) maxBytes() int64 {
	if f.MaxBytes <= 0 {
		return config.MaxHTTPResponseSize
	}
	return f.MaxBytes
}

// Fetch retrieves the payload at targetURL.
// It sanitizes the URL for logging purposes to avoid leaking sensitive tokens
// and enforces a maximum response size limit.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}

	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Strip query parameters which might contain tokens.
	safeURL := u.Scheme + "://" + u.Host + u.Path

	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, safeURL),
	)

	var (
		meta       cacheEntry
		cachedBody []byte
		hasCache   bool
	)
	if f.Cache != nil {
		meta, cachedBody, hasCache = f.Cache.Get(targetURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}
	if hasCache {
		if meta.ETag != "" {
			req.Header.Set(config.HeaderIfNoneMatch, meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set(config.HeaderIfModifiedSince, meta.LastModified)
		}
	}

	log.Debug(config.MsgFetchStart)

	resp, err := f.Client.Do(req)
	if err != nil {
		// Cancellation is the caller's decision, never masked by the cache.
		if hasCache && ctx.Err() == nil {
			log.Warn(config.MsgFetchFallback, config.LogKeyError, err)
			return io.NopCloser(bytes.NewReader(cachedBody)), nil
		}
		return nil, fmt.Errorf("network error during fetch: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if f.Cache == nil {
			log.Info(config.MsgFetchSuccess, slog.Int64("content_length", resp.ContentLength))
			return &limitedReadCloser{
				Reader: io.LimitReader(resp.Body, f.maxBytes()+1),
				Closer: resp.Body,
				limit:  f.maxBytes(),
			}, nil
		}

		// Buffer the body so it can be cached once the caller commits it.
		defer func() { _ = resp.Body.Close() }()
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes()+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if int64(len(body)) > f.maxBytes() {
			return nil, fmt.Errorf("%s: %d bytes", config.ErrResponseTooLarge, f.maxBytes())
		}
		entry := cacheEntry{
			URL:          targetURL,
			ETag:         resp.Header.Get(config.HeaderETag),
			LastModified: resp.Header.Get(config.HeaderLastModified),
		}
		log.Info(config.MsgFetchSuccess,
			slog.Int(config.LogKeySizeBytes, len(body)),
			slog.String(config.LogKeyETag, entry.ETag),
			slog.Bool(config.LogKeyFromCache, false),
		)
		return &pendingBody{
			Reader: bytes.NewReader(body),
			commit: func() error { return f.Cache.Put(entry, body) },
		}, nil

	case http.StatusNotModified:
		_ = resp.Body.Close()
		if !hasCache {
			return nil, errors.New(config.ErrNotModifiedEmpty)
		}
		log.Info(config.MsgFetchNotModified, slog.Bool(config.LogKeyFromCache, true))
		return io.NopCloser(bytes.NewReader(cachedBody)), nil

	default:
		_ = resp.Body.Close() // Ensure we don't leak resources on error.
		log.Warn("Server returned error status",
			slog.Int(config.LogKeyStatus, resp.StatusCode),
		)
		if hasCache {
			log.Warn(config.MsgFetchFallback, slog.Int(config.LogKeyStatus, resp.StatusCode))
			return io.NopCloser(bytes.NewReader(cachedBody)), nil
		}
		return nil, fmt.Errorf("server returned unexpected status: %d %s", resp.StatusCode, resp.Status)
	}
}

// limitedReadCloser wraps an io.Reader (Limited) and the original io.Closer.
// This ensures we can close the network connection properly while limiting the read size.
// The reader is limited to limit+1 bytes so an oversized body fails instead
// of being silently truncated.
type limitedReadCloser struct {
	io.Reader
	io.Closer
	limit int64
	read  int64
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	n, err = l.Reader.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return n, fmt.Errorf("%s: %d bytes", config.ErrResponseTooLarge, l.limit)
	}
	return n, err
}

func (l *limitedReadCloser) Close() error {
	return l.Closer.Close()
}

// pendingBody is a fully buffered 200 response waiting for Commit.
type pendingBody struct {
	*bytes.Reader
	commit func() error
}

func (p *pendingBody) Close() error {
	return nil
}

// Commit stores the body as the last good payload.
func (p *pendingBody) Commit() error {
	return p.commit()
}
