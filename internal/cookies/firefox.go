package cookies

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// firefoxExtractor reads the plaintext cookies.sqlite of Firefox-format
// browsers (Firefox, Zen). Profiles live under one of roots.
type firefoxExtractor struct {
	name  string
	roots []string
}

func (f *firefoxExtractor) Browser() string { return f.name }

func (f *firefoxExtractor) Cookies(ctx context.Context, domain string) ([]Cookie, error) {
	dbPath, err := f.findCookieDB()
	if err != nil {
		return nil, err
	}
	db, cleanup, err := openCopy(dbPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	rows, err := db.QueryContext(ctx,
		`SELECT host, name, value, path, expiry, isSecure
		 FROM moz_cookies
		 WHERE host = ? OR host = ? OR host LIKE ?`,
		domain, "."+domain, "%."+domain)
	if err != nil {
		return nil, fmt.Errorf("%s: query cookies: %w", f.name, err)
	}
	defer rows.Close()

	now := time.Now().Unix()
	var out []Cookie
	for rows.Next() {
		var c Cookie
		var secure int
		if err := rows.Scan(&c.Domain, &c.Name, &c.Value, &c.Path, &c.Expires, &secure); err != nil {
			return nil, err
		}
		if c.Expires != 0 && c.Expires < now {
			continue
		}
		c.Secure = secure != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

// findCookieDB globs the profile roots for cookies.sqlite and picks the most
// recently modified one, which is the active profile in practice.
func (f *firefoxExtractor) findCookieDB() (string, error) {
	var newest string
	var newestMod time.Time
	for _, root := range f.roots {
		matches, err := filepath.Glob(filepath.Join(root, "*", "cookies.sqlite"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil {
				continue
			}
			if fi.ModTime().After(newestMod) {
				newest = m
				newestMod = fi.ModTime()
			}
		}
	}
	if newest == "" {
		return "", fmt.Errorf("%s: no cookie database found", f.name)
	}
	return newest, nil
}
