// Package favicon proxies site icons for the dashboard and checks whether
// bookmarked links still answer.
package favicon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starwishes/Nav/internal/cache"
)

const (
	// FetchTimeout bounds each upstream icon request.
	FetchTimeout = 2 * time.Second

	// minIconSize filters placeholder responses of the icon services.
	minIconSize = 100

	// maxIconSize caps how much of an upstream response is read.
	maxIconSize = 512 << 10
)

// ErrNotFound is returned when no icon service produced a usable icon.
var ErrNotFound = errors.New("favicon not found")

// Source builds the upstream icon URL for a hostname.
type Source func(host string) string

// DefaultSources are the public icon services, raced against each other.
var DefaultSources = []Source{
	func(host string) string {
		return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(host) + "&sz=64"
	},
	func(host string) string {
		return "https://icons.duckduckgo.com/ip3/" + host + ".ico"
	},
}

// Cache stores icons per hostname. cache.FaviconCache satisfies it.
type Cache interface {
	Get(ctx context.Context, host string) (*cache.Favicon, bool)
	Set(ctx context.Context, host string, icon *cache.Favicon)
}

// Fetcher looks up icons through the configured sources, caching results
// when a cache is configured.
type Fetcher struct {
	client  *http.Client
	cache   Cache
	sources []Source
	flight  singleflight.Group
}

// NewFetcher creates a fetcher. A nil cache disables caching; nil sources
// mean DefaultSources.
func NewFetcher(client *http.Client, c Cache, sources []Source) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if len(sources) == 0 {
		sources = DefaultSources
	}
	return &Fetcher{client: client, cache: c, sources: sources}
}

// HostOf extracts the hostname of a bookmark URL, adding https:// when
// the scheme is missing.
func HostOf(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("empty url")
	}
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Hostname() == "" {
		return "", errors.New("url has no host")
	}
	return strings.ToLower(u.Hostname()), nil
}

// Lookup returns the icon of the site behind rawURL. Concurrent lookups of
// the same host share one upstream fetch.
func (f *Fetcher) Lookup(ctx context.Context, rawURL string) (*cache.Favicon, error) {
	host, err := HostOf(rawURL)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if icon, ok := f.cache.Get(ctx, host); ok {
			return icon, nil
		}
	}

	v, err, _ := f.flight.Do(host, func() (any, error) {
		icon, err := f.race(context.WithoutCancel(ctx), host)
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			f.cache.Set(ctx, host, icon)
		}
		return icon, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cache.Favicon), nil
}

// race queries every source at once and returns the first usable icon.
func (f *Fetcher) race(ctx context.Context, host string) (*cache.Favicon, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	defer cancel()

	results := make(chan *cache.Favicon, len(f.sources))
	for _, src := range f.sources {
		go func(target string) {
			icon, err := f.fetch(ctx, target)
			if err != nil {
				slog.Debug("favicon source failed", "host", host, "source", target, "error", err)
			}
			results <- icon
		}(src(host))
	}

	for range f.sources {
		if icon := <-results; icon != nil {
			return icon, nil
		}
	}
	return nil, ErrNotFound
}

func (f *Fetcher) fetch(ctx context.Context, target string) (*cache.Favicon, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxIconSize))
	if err != nil {
		return nil, err
	}
	if len(data) <= minIconSize {
		return nil, fmt.Errorf("icon too small (%d bytes)", len(data))
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &cache.Favicon{ContentType: ct, Data: data}, nil
}
