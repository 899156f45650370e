package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cpgrab/cpgrab/internal/cookies"
)

const loginMarker = "Fill in the form to login"

// fakeCookieSource records Get/Invalidate traffic for assertions.
type fakeCookieSource struct {
	jar         []cookies.Cookie
	err         error
	forces      []bool
	invalidated []string
}

func (f *fakeCookieSource) Get(ctx context.Context, domain string, force bool) ([]cookies.Cookie, error) {
	f.forces = append(f.forces, force)
	if f.err != nil {
		return nil, f.err
	}
	return f.jar, nil
}

func (f *fakeCookieSource) Invalidate(domain string) {
	f.invalidated = append(f.invalidated, domain)
}

func newAuthClient(src CookieSource) *Client {
	c := NewClient(src)
	c.retry = fastRetry
	return c
}

func TestTextWithAuthCleanBody(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte("problem statement"))
	}))
	defer srv.Close()

	src := &fakeCookieSource{jar: []cookies.Cookie{
		{Name: "JSESSIONID", Value: "abc123", Domain: "codeforces.com"},
		{Name: "39ce7", Value: "xyz", Domain: "codeforces.com"},
	}}
	c := newAuthClient(src)
	body, err := c.TextWithAuth(context.Background(), srv.URL, AuthSpec{
		Domain:       "codeforces.com",
		LoginMarkers: []string{loginMarker},
	})
	if err != nil {
		t.Fatalf("TextWithAuth() error = %v", err)
	}
	if body != "problem statement" {
		t.Errorf("body = %q, want %q", body, "problem statement")
	}
	if gotCookie != "JSESSIONID=abc123; 39ce7=xyz" {
		t.Errorf("Cookie header = %q, want both cookies", gotCookie)
	}
	if len(src.forces) != 1 || src.forces[0] {
		t.Errorf("cookie lookups = %v, want one non-forced", src.forces)
	}
	if len(src.invalidated) != 0 {
		t.Errorf("invalidated = %v, want none", src.invalidated)
	}
}

func TestTextWithAuthRefreshOnLoginPage(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte("<html>" + loginMarker + "</html>"))
			return
		}
		w.Write([]byte("real content"))
	}))
	defer srv.Close()

	src := &fakeCookieSource{jar: []cookies.Cookie{{Name: "sid", Value: "v"}}}
	c := newAuthClient(src)
	body, err := c.TextWithAuth(context.Background(), srv.URL, AuthSpec{
		Domain:       "codeforces.com",
		LoginMarkers: []string{loginMarker},
	})
	if err != nil {
		t.Fatalf("TextWithAuth() error = %v", err)
	}
	if body != "real content" {
		t.Errorf("body = %q, want %q", body, "real content")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d requests, want 2", n)
	}
	want := []bool{false, true}
	if len(src.forces) != 2 || src.forces[0] != want[0] || src.forces[1] != want[1] {
		t.Errorf("cookie lookups = %v, want %v", src.forces, want)
	}
	if len(src.invalidated) != 1 || src.invalidated[0] != "codeforces.com" {
		t.Errorf("invalidated = %v, want [codeforces.com]", src.invalidated)
	}
}

func TestTextWithAuthTerminalAfterRefresh(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(loginMarker))
	}))
	defer srv.Close()

	src := &fakeCookieSource{jar: []cookies.Cookie{{Name: "sid", Value: "stale"}}}
	c := newAuthClient(src)
	_, err := c.TextWithAuth(context.Background(), srv.URL, AuthSpec{
		Domain:       "codeforces.com",
		LoginMarkers: []string{loginMarker},
	})
	var pe *PlatformError
	if !errors.As(err, &pe) {
		t.Fatalf("TextWithAuth() error = %v, want PlatformError", err)
	}
	if pe.Hint == "" {
		t.Error("PlatformError.Hint is empty, want login guidance")
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("server saw %d requests, want exactly 2 (one refresh, then stop)", n)
	}
}

func TestTextWithAuthForceRefresh(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(loginMarker))
	}))
	defer srv.Close()

	src := &fakeCookieSource{jar: []cookies.Cookie{{Name: "sid", Value: "v"}}}
	c := newAuthClient(src)
	_, err := c.TextWithAuth(context.Background(), srv.URL, AuthSpec{
		Domain:       "codeforces.com",
		LoginMarkers: []string{loginMarker},
		ForceRefresh: true,
	})
	if !IsPlatformError(err) {
		t.Fatalf("TextWithAuth() error = %v, want PlatformError", err)
	}
	// ForceRefresh burns the single refresh up front, so a login page on the
	// first body is already terminal.
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
	if len(src.forces) != 1 || !src.forces[0] {
		t.Errorf("cookie lookups = %v, want one forced", src.forces)
	}
}

func TestTextWithAuthNoMarkers(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("Fill in the form to login into somewhere"))
	}))
	defer srv.Close()

	src := &fakeCookieSource{jar: []cookies.Cookie{{Name: "sid", Value: "v"}}}
	c := newAuthClient(src)
	body, err := c.TextWithAuth(context.Background(), srv.URL, AuthSpec{Domain: "example.com"})
	if err != nil {
		t.Fatalf("TextWithAuth() error = %v", err)
	}
	if body == "" {
		t.Error("body is empty, want passthrough")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1 (no markers, no inspection)", n)
	}
}

func TestTextWithAuthCookieSourceError(t *testing.T) {
	src := &fakeCookieSource{err: errors.New("no browser cookies")}
	c := newAuthClient(src)
	_, err := c.TextWithAuth(context.Background(), "https://codeforces.com/group/x/contest/1/problem/A", AuthSpec{
		Domain: "codeforces.com",
	})
	var pe *PlatformError
	if !errors.As(err, &pe) {
		t.Fatalf("TextWithAuth() error = %v, want PlatformError", err)
	}
	if pe.Domain != "codeforces.com" {
		t.Errorf("Domain = %q, want %q", pe.Domain, "codeforces.com")
	}
}

func TestTextWithAuthNilSource(t *testing.T) {
	c := NewClient(nil)
	_, err := c.TextWithAuth(context.Background(), "https://codeforces.com/", AuthSpec{Domain: "codeforces.com"})
	if !IsPlatformError(err) {
		t.Fatalf("TextWithAuth() error = %v, want PlatformError", err)
	}
}

func TestTextWithAuthDerivesDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	src := &fakeCookieSource{jar: nil}
	c := newAuthClient(src)
	// Empty Domain falls back to the URL host (127.0.0.1 has no public suffix).
	if _, err := c.TextWithAuth(context.Background(), srv.URL, AuthSpec{}); err != nil {
		t.Fatalf("TextWithAuth() error = %v", err)
	}
	if len(src.forces) != 1 {
		t.Fatalf("cookie lookups = %d, want 1", len(src.forces))
	}
}
