package registry

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// rateLimitedTransport throttles requests to the crates.io API host per
// the registry's crawler policy. The sparse index and docs.rs hosts are
// exempt: they are CDN-backed and explicitly tolerate bursts.
type rateLimitedTransport struct {
	base      http.RoundTripper
	limiter   *rate.Limiter
	userAgent string
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.URL.Host == "crates.io" {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the HTTP client every upstream call shares: a
// request timeout, a stable User-Agent, and a 1 req/s limit on the
// crates.io API host.
func NewHTTPClient(userAgent string, perSecond float64) *http.Client {
	if userAgent == "" {
		userAgent = "cratedocs/0.1 (https://github.com/cratedocs/cratedocs)"
	}
	if perSecond <= 0 {
		perSecond = 1
	}
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &rateLimitedTransport{
			base:      http.DefaultTransport,
			limiter:   rate.NewLimiter(rate.Limit(perSecond), 1),
			userAgent: userAgent,
		},
	}
}
