package favicon

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// LinkTimeout bounds each link check.
const LinkTimeout = 5 * time.Second

// maxParallelChecks limits concurrent outbound checks per call.
const maxParallelChecks = 8

// Link check outcomes.
const (
	LinkOK    = "ok"
	LinkError = "error"
)

// LinkStatus is the result of checking one URL.
type LinkStatus struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

// CheckLinks sends a HEAD request to every URL and reports whether it
// answered with a 2xx status. Results keep the order of urls.
func CheckLinks(ctx context.Context, client *http.Client, urls []string) []LinkStatus {
	if client == nil {
		client = &http.Client{}
	}
	out := make([]LinkStatus, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			out[i] = LinkStatus{URL: u, Status: checkLink(ctx, client, u)}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func checkLink(ctx context.Context, client *http.Client, target string) string {
	ctx, cancel := context.WithTimeout(ctx, LinkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return LinkError
	}
	resp, err := client.Do(req)
	if err != nil {
		return LinkError
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LinkError
	}
	return LinkOK
}
