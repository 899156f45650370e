package cookies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"
)

// ErrNoBrowserCookies means no installed browser yielded cookies for a domain.
var ErrNoBrowserCookies = errors.New("no browser cookies found")

// Extractor reads cookies for one domain out of one locally installed browser.
type Extractor interface {
	Browser() string
	Cookies(ctx context.Context, domain string) ([]Cookie, error)
}

// Entry is the cached cookie set for one domain. The cache keeps exactly one
// live entry per domain; re-extraction replaces it.
type Entry struct {
	Domain    string    `json:"domain"`
	Cookies   []Cookie  `json:"cookies"`
	FetchedAt time.Time `json:"fetched_at"`
	Browser   string    `json:"browser"`
}

// Options configures a Cache.
type Options struct {
	// Path is the persistence file. Empty disables persistence.
	Path string
	// Enabled false bypasses cached entries entirely: every Get extracts fresh.
	Enabled bool
	// MaxAgeHours after which an entry goes stale. -1 means entries never expire.
	MaxAgeHours int
	// Extractors in probe order. See DetectBrowsers.
	Extractors []Extractor
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Cache holds browser cookies keyed by judge domain. It is built once during
// command wiring and handed to the fetch client; commands run fetches
// sequentially, so no locking beyond the stat counters is needed.
type Cache struct {
	path       string
	enabled    bool
	maxAge     int
	extractors []Extractor
	now        func() time.Time
	log        *slog.Logger

	entries map[string]Entry

	hits        atomic.Int64
	misses      atomic.Int64
	extractions atomic.Int64
}

// Stats are cumulative counters since the cache was constructed.
type Stats struct {
	Hits        int64
	Misses      int64
	Extractions int64
}

// New builds a Cache and loads any persisted entries from opts.Path.
func New(opts Options) *Cache {
	c := &Cache{
		path:       opts.Path,
		enabled:    opts.Enabled,
		maxAge:     opts.MaxAgeHours,
		extractors: opts.Extractors,
		now:        opts.Now,
		log:        opts.Logger,
		entries:    make(map[string]Entry),
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.load()
	return c
}

// CachePath returns the default location of the persisted cookie cache.
func CachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cpgrab", "cookies.json")
}

// Get returns cookies for domain, extracting from a browser when the cache
// is disabled, empty, stale, or force is set. A fresh cached entry is served
// without touching any browser.
func (c *Cache) Get(ctx context.Context, domain string, force bool) ([]Cookie, error) {
	if c.enabled && !force {
		if e, ok := c.entries[domain]; ok && !c.stale(e) {
			c.hits.Add(1)
			c.log.Debug("cookie cache hit",
				slog.String("domain", domain),
				slog.String("browser", e.Browser),
			)
			return e.Cookies, nil
		}
	}
	c.misses.Add(1)
	return c.extract(ctx, domain)
}

// Invalidate drops the entry for domain. The next Get re-extracts.
func (c *Cache) Invalidate(domain string) {
	delete(c.entries, domain)
	c.persist()
}

// Clear drops all entries and removes the persistence file.
func (c *Cache) Clear() error {
	c.entries = make(map[string]Entry)
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cookie cache: %w", err)
	}
	return nil
}

// Entry returns the live cached entry for domain, if any. It never extracts.
func (c *Cache) Entry(domain string) (Entry, bool) {
	e, ok := c.entries[domain]
	return e, ok
}

// Entries lists live cached entries sorted by domain.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

// Stats returns the hit/miss/extraction counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Extractions: c.extractions.Load(),
	}
}

func (c *Cache) stale(e Entry) bool {
	if c.maxAge < 0 {
		return false
	}
	return c.now().Sub(e.FetchedAt) > time.Duration(c.maxAge)*time.Hour
}

// extract probes browsers in order and keeps the first non-empty cookie set.
func (c *Cache) extract(ctx context.Context, domain string) ([]Cookie, error) {
	c.extractions.Add(1)
	for _, ex := range c.extractors {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cs, err := ex.Cookies(ctx, domain)
		if err != nil {
			c.log.Debug("cookie extraction failed",
				slog.String("browser", ex.Browser()),
				slog.String("domain", domain),
				slog.Any("error", err),
			)
			continue
		}
		if len(cs) == 0 {
			continue
		}
		c.log.Debug("cookies extracted",
			slog.String("browser", ex.Browser()),
			slog.String("domain", domain),
			slog.Int("count", len(cs)),
		)
		if c.enabled {
			c.entries[domain] = Entry{
				Domain:    domain,
				Cookies:   cs,
				FetchedAt: c.now(),
				Browser:   ex.Browser(),
			}
			c.persist()
		}
		return cs, nil
	}
	return nil, fmt.Errorf("%s: %w", domain, ErrNoBrowserCookies)
}

func (c *Cache) load() {
	if c.path == "" {
		return
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Debug("cookie cache file unreadable, starting fresh",
			slog.String("path", c.path), slog.Any("error", err))
		return
	}
	c.entries = entries
}

func (c *Cache) persist() {
	if c.path == "" || !c.enabled {
		return
	}
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o750); err != nil {
		c.log.Debug("cookie cache dir", slog.Any("error", err))
		return
	}
	// Cookies are credentials: keep the file private.
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		c.log.Debug("cookie cache write failed", slog.String("path", c.path), slog.Any("error", err))
	}
}
