package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cpgrab/cpgrab/internal/cookies"
)

// AuthSpec describes an authenticated fetch for one judge domain.
// LoginMarkers are substrings whose presence in a response body means the
// platform served its login page instead of the requested content; each
// judge configures its own.
type AuthSpec struct {
	// Domain to look up cookies for. Empty derives the registrable domain
	// from the URL.
	Domain string
	// LoginMarkers trigger the cookie-refresh retry. Empty means the body
	// is never inspected.
	LoginMarkers []string
	// ForceRefresh skips cached cookies for the first attempt.
	ForceRefresh bool
}

// TextWithAuth fetches rawURL with browser session cookies attached.
//
// The retry protocol is a two-state loop. The first attempt runs with
// cached cookies; if the body looks like a login page the domain entry is
// invalidated, cookies are re-extracted from the browser, and the fetch is
// retried exactly once. A login page after that refresh is terminal: the
// browser session itself is missing or expired, and only the user can fix
// that by logging in again.
func (c *Client) TextWithAuth(ctx context.Context, rawURL string, spec AuthSpec) (string, error) {
	if c.cookies == nil {
		return "", &PlatformError{Domain: spec.Domain, Err: errors.New("no cookie source configured")}
	}
	domain := spec.Domain
	if domain == "" {
		domain = RegistrableDomain(rawURL)
		if domain == "" {
			return "", &NetworkError{URL: rawURL, Err: fmt.Errorf("cannot derive domain from %q", rawURL)}
		}
	}

	refreshed := spec.ForceRefresh
	for range 2 {
		jar, err := c.cookies.Get(ctx, domain, refreshed)
		if err != nil {
			return "", &PlatformError{Domain: domain, Hint: loginHint(domain), Err: err}
		}
		body, err := c.get(ctx, rawURL, cookies.Header(jar), true)
		if err != nil {
			return "", err
		}
		if !containsAny(body, spec.LoginMarkers) {
			return body, nil
		}
		if refreshed {
			return "", &PlatformError{Domain: domain, Hint: loginHint(domain)}
		}
		c.log.Debug("login page detected, refreshing cookies", slog.String("domain", domain), slog.String("url", rawURL))
		c.cookies.Invalidate(domain)
		refreshed = true
	}
	// Unreachable: the refreshed branch above always returns.
	return "", &PlatformError{Domain: domain, Hint: loginHint(domain)}
}

func loginHint(domain string) string {
	return fmt.Sprintf("authentication failed; open https://%s in your browser, log in, then retry", domain)
}

func containsAny(body string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(body, m) {
			return true
		}
	}
	return false
}
