package cookies

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"
)

// openCopy copies a browser cookie database to a temp file and opens that.
// The live database is usually locked by the running browser.
func openCopy(dbPath string) (*sql.DB, func(), error) {
	src, err := os.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open cookie db: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "cpgrab-cookies-*.sqlite")
	if err != nil {
		return nil, nil, fmt.Errorf("temp cookie db: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, nil, fmt.Errorf("copy cookie db: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, nil, err
	}

	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, nil, fmt.Errorf("open cookie db copy: %w", err)
	}
	db.SetMaxOpenConns(1)

	cleanup := func() {
		db.Close()
		os.Remove(tmpPath)
	}
	return db, cleanup, nil
}
