package cookies

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor returns a canned cookie set and counts how often it is asked.
type fakeExtractor struct {
	browser string
	jar     []Cookie
	err     error
	calls   int
}

func (f *fakeExtractor) Browser() string { return f.browser }

func (f *fakeExtractor) Cookies(ctx context.Context, domain string) ([]Cookie, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.jar, nil
}

var testJar = []Cookie{{Name: "sid", Value: "tok", Domain: ".codeforces.com", Path: "/"}}

// testClock is a settable clock for staleness checks.
type testClock struct{ t time.Time }

func newTestClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCacheServesFreshEntry(t *testing.T) {
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	clock := newTestClock()
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}, Now: clock.now})

	first, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	require.Len(t, first, 1)

	clock.advance(5 * time.Hour)
	second, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, ex.calls, "fresh entry must be served without re-extraction")

	st := c.Stats()
	assert.Equal(t, int64(1), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(1), st.Extractions)
}

func TestCacheReExtractsWhenStale(t *testing.T) {
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	clock := newTestClock()
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}, Now: clock.now})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)

	clock.advance(7 * time.Hour)
	_, err = c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, 2, ex.calls, "stale entry must trigger re-extraction")
}

func TestCacheNeverExpires(t *testing.T) {
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	clock := newTestClock()
	c := New(Options{Enabled: true, MaxAgeHours: -1, Extractors: []Extractor{ex}, Now: clock.now})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)

	clock.advance(10_000 * time.Hour)
	_, err = c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, 1, ex.calls, "max age -1 must never expire entries")
}

func TestCacheDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	c := New(Options{Path: path, Enabled: false, MaxAgeHours: 6, Extractors: []Extractor{ex}})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, 2, ex.calls, "disabled cache must extract on every call")

	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist), "disabled cache must not persist")
}

func TestCacheForce(t *testing.T) {
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "codeforces.com", true)
	require.NoError(t, err)
	assert.Equal(t, 2, ex.calls, "force must bypass a fresh entry")
}

func TestCacheInvalidate(t *testing.T) {
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)

	c.Invalidate("codeforces.com")
	_, ok := c.Entry("codeforces.com")
	assert.False(t, ok)

	_, err = c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, 2, ex.calls)
}

func TestCacheProbeOrder(t *testing.T) {
	broken := &fakeExtractor{browser: "zen", err: errors.New("no cookie database found")}
	empty := &fakeExtractor{browser: "firefox"}
	good := &fakeExtractor{browser: "chrome", jar: testJar}
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{broken, empty, good}})

	jar, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, testJar, jar)
	assert.Equal(t, 1, broken.calls, "failing browser is probed and skipped")
	assert.Equal(t, 1, empty.calls, "empty result moves on to the next browser")

	e, ok := c.Entry("codeforces.com")
	require.True(t, ok)
	assert.Equal(t, "chrome", e.Browser)
}

func TestCacheAllBrowsersFail(t *testing.T) {
	a := &fakeExtractor{browser: "zen", err: errors.New("gone")}
	b := &fakeExtractor{browser: "firefox"}
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{a, b}})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoBrowserCookies), "want ErrNoBrowserCookies, got %v", err)
}

func TestCachePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cookies.json")
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	clock := newTestClock()

	c1 := New(Options{Path: path, Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}, Now: clock.now})
	_, err := c1.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err, "persistence file must exist after extraction")
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm(), "cookie file must be private")

	// A second cache over the same file serves the entry without a browser.
	untouched := &fakeExtractor{browser: "firefox", jar: testJar}
	c2 := New(Options{Path: path, Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{untouched}, Now: clock.now})
	jar, err := c2.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, testJar, jar)
	assert.Equal(t, 0, untouched.calls)

	e, ok := c2.Entry("codeforces.com")
	require.True(t, ok)
	assert.Equal(t, "firefox", e.Browser)
	assert.True(t, e.FetchedAt.Equal(clock.now()), "FetchedAt = %v, want %v", e.FetchedAt, clock.now())
}

func TestCacheClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	c := New(Options{Path: path, Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}})

	_, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)

	require.NoError(t, c.Clear())
	assert.Empty(t, c.Entries())
	_, err = os.Stat(path)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Clearing an already-clean cache is fine.
	require.NoError(t, c.Clear())
}

func TestCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	c := New(Options{Path: path, Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}})

	jar, err := c.Get(context.Background(), "codeforces.com", false)
	require.NoError(t, err)
	assert.Equal(t, testJar, jar)
	assert.Equal(t, 1, ex.calls, "corrupt file starts fresh and extracts")
}

func TestCacheEntriesSorted(t *testing.T) {
	ex := &fakeExtractor{browser: "firefox", jar: testJar}
	c := New(Options{Enabled: true, MaxAgeHours: 6, Extractors: []Extractor{ex}})

	for _, d := range []string{"codeforces.com", "atcoder.jp", "cses.fi"} {
		_, err := c.Get(context.Background(), d, false)
		require.NoError(t, err)
	}

	var domains []string
	for _, e := range c.Entries() {
		domains = append(domains, e.Domain)
	}
	assert.Equal(t, []string{"atcoder.jp", "codeforces.com", "cses.fi"}, domains)
}

func TestHeader(t *testing.T) {
	tests := []struct {
		name string
		jar  []Cookie
		want string
	}{
		{"empty", nil, ""},
		{"single", []Cookie{{Name: "a", Value: "1"}}, "a=1"},
		{"multiple", []Cookie{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}, "a=1; b=2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Header(tt.jar))
		})
	}
}
