// Package fetch is the HTTP layer shared by all judges: browser-like
// headers, per-host rate limiting, transient-failure retry, and cookie
// authenticated fetches with a bounded login-retry protocol.
package fetch

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/cpgrab/cpgrab/internal/cookies"
)

// Per-call timeouts follow a two-tier model: API and metadata calls are
// short, HTML problem pages get more room. Judges wrap their contexts with
// these at the call site.
const (
	APITimeout  = 10 * time.Second
	PageTimeout = 15 * time.Second
)

// Judge pages are small; cap body reads regardless of what the server sends.
const maxBodySize = 4 << 20

// Headers mimic a desktop Firefox. Some judges serve reduced markup or
// challenge pages to obvious non-browser agents.
const (
	userAgent      = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptJSON     = "application/json,text/plain,*/*;q=0.9"
	acceptLanguage = "en-US,en;q=0.5"
)

// CookieSource is the cookie cache surface the fetch layer needs.
// *cookies.Cache implements it directly; tests substitute fakes.
type CookieSource interface {
	Get(ctx context.Context, domain string, force bool) ([]cookies.Cookie, error)
	Invalidate(domain string)
}

// Client performs all judge HTTP traffic. Commands run fetches one at a
// time; the client still guards its limiter table so it is safe to share.
type Client struct {
	http    *http.Client
	cookies CookieSource
	retry   RetryConfig
	log     *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	requests atomic.Int64
}

// NewClient builds a Client on a tuned transport. source may be nil when no
// authenticated fetches will happen (some tests).
func NewClient(source CookieSource) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 15 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				return nil
			},
		},
		cookies:  source,
		retry:    DefaultRetryConfig,
		log:      slog.Default(),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Requests returns the total number of HTTP requests attempted.
func (c *Client) Requests() int64 { return c.requests.Load() }

// Text fetches rawURL and returns the response body. Transport failures and
// non-2xx statuses come back as NetworkError.
func (c *Client) Text(ctx context.Context, rawURL string) (string, error) {
	return c.get(ctx, rawURL, "", true)
}

// JSON fetches rawURL and decodes the body into v. A malformed body is a
// ParseError, everything transport-side a NetworkError.
func (c *Client) JSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.get(ctx, rawURL, "", false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &ParseError{URL: rawURL, Err: err}
	}
	return nil
}

// RegistrableDomain reduces a URL host to its effective TLD plus one,
// e.g. "www.codeforces.com" becomes "codeforces.com". Hosts without a
// public suffix (IPs, localhost) pass through unchanged.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host == "" {
		return ""
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	return host
}

// get performs one rate-limited GET with retry on transient failures.
func (c *Client) get(ctx context.Context, rawURL, cookieHeader string, isHTML bool) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", &NetworkError{URL: rawURL, Err: fmt.Errorf("invalid url: %q", rawURL)}
	}
	if err := c.limiter(u.Host).Wait(ctx); err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}

	start := time.Now()
	resp, err := retryHTTP(ctx, c.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept-Language", acceptLanguage)
		req.Header.Set("Accept-Encoding", "gzip")
		if isHTML {
			req.Header.Set("Accept", acceptHTML)
		} else {
			req.Header.Set("Accept", acceptJSON)
		}
		if cookieHeader != "" {
			req.Header.Set("Cookie", cookieHeader)
		}
		c.requests.Add(1)
		return c.http.Do(req)
	})
	if err != nil {
		return "", asNetworkError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &NetworkError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := readBody(resp)
	if err != nil {
		return "", &NetworkError{URL: rawURL, Err: err}
	}
	c.log.Debug("fetched",
		slog.String("url", rawURL),
		slog.Int("bytes", len(body)),
		slog.Duration("took", time.Since(start)),
	)
	return string(body), nil
}

// limiter returns the per-host rate limiter, creating it on first use.
// Codeforces asks API users to stay near one request per two seconds;
// everything else gets a gentler shared default.
func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.limiters[host]; ok {
		return l
	}
	every := 250 * time.Millisecond
	if strings.HasSuffix(host, "codeforces.com") {
		every = 2 * time.Second
	}
	l := rate.NewLimiter(rate.Every(every), 1)
	c.limiters[host] = l
	return l
}

// readBody reads a size-capped response body, handling gzip when the
// transport did not already transparently decompress.
func readBody(resp *http.Response) ([]byte, error) {
	r := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(io.LimitReader(r, maxBodySize))
}

func asNetworkError(rawURL string, err error) error {
	var hs *httpStatusError
	if errors.As(err, &hs) {
		return &NetworkError{URL: rawURL, Status: hs.StatusCode}
	}
	return &NetworkError{URL: rawURL, Err: err}
}
