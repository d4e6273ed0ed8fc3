package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/tartampluch/go-contacts/internal/config"
)

// AddressBookFetcher retrieves a remote address book (one or more vCards).
type AddressBookFetcher interface {
	Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error)
}

// HTTPFetcher downloads address books over HTTP(S) with optional basic auth.
type HTTPFetcher struct {
	Client *http.Client
	// MaxBytes caps the body; reading past it fails instead of truncating.
	MaxBytes int64
}

// NewHTTPFetcher creates a fetcher with the configured timeout and size cap.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: config.HTTPTimeout},
		MaxBytes: config.MaxHTTPResponseSize,
	}
}

// Fetch downloads targetURL. The response must be 200 and, when it declares a
// Content-Type, one of config.AddressBookMediaTypes: a login page served as
// text/html is an error, not an empty address book.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL, user, pass string) (io.ReadCloser, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrInvalidURL, err)
	}
	if u.Scheme != config.SchemeHTTP && u.Scheme != config.SchemeHTTPS {
		return nil, fmt.Errorf("%s: %s", config.ErrProtocol, u.Scheme)
	}

	// Query strings may carry tokens; keep them out of the logs.
	log := slog.With(
		slog.String(config.LogKeyComponent, config.CompFetcher),
		slog.String(config.LogKeyURL, u.Scheme+"://"+u.Host+u.Path),
	)
	log.Debug(config.MsgFetchStart)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRequestCreate, err)
	}
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)
	req.Header.Set(config.HeaderAccept, config.AcceptAddressBook)
	if user != "" || pass != "" {
		req.SetBasicAuth(user, pass)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		log.Warn(config.MsgFetchStatus, slog.Int(config.LogKeyStatus, resp.StatusCode))
		return nil, fmt.Errorf("%s: %d %s", config.ErrHTTPStatus, resp.StatusCode, resp.Status)
	}

	if ct := resp.Header.Get(config.HeaderContentType); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !slices.Contains(config.AddressBookMediaTypes, mediaType) {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("%s: %s", config.ErrContentType, ct)
		}
	}

	log.Info(config.MsgFetchBody,
		slog.Int64(config.LogKeyLength, resp.ContentLength),
		slog.String(config.LogKeyMime, resp.Header.Get(config.HeaderContentType)),
	)

	limit := f.MaxBytes
	if limit <= 0 {
		limit = config.MaxHTTPResponseSize
	}
	return &addressBookBody{body: resp.Body, limit: limit, log: log}, nil
}

// addressBookBody counts what the importer reads, fails once the limit is
// crossed and logs the downloaded size on Close.
type addressBookBody struct {
	body  io.ReadCloser
	limit int64
	read  int64
	log   *slog.Logger
}

func (b *addressBookBody) Read(p []byte) (int, error) {
	if b.read > b.limit {
		return 0, b.tooLarge()
	}
	// Allow one byte past the limit so an exact-size body still ends with EOF.
	if room := b.limit + 1 - b.read; int64(len(p)) > room {
		p = p[:room]
	}
	n, err := b.body.Read(p)
	b.read += int64(n)
	if b.read > b.limit {
		return n - 1, b.tooLarge()
	}
	return n, err
}

func (b *addressBookBody) tooLarge() error {
	return fmt.Errorf("%s: %s", config.ErrBodyTooLarge, humanize.Bytes(uint64(b.limit)))
}

func (b *addressBookBody) Close() error {
	b.log.Info(config.MsgFetchDone, slog.String(config.LogKeySize, humanize.Bytes(uint64(b.read))))
	return b.body.Close()
}
