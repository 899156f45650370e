package problem

import (
	"errors"
	"io"
	"os"
	"strings"
)

// headerScanLimit bounds how much of a source file is searched for the
// metadata comment; headers sit at the very top.
const headerScanLimit = 500

// ReadLink extracts the Link: field from a problem source file's header
// comment. Returns "" when the file has no Link line.
func ReadLink(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, headerScanLimit)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}

	for _, line := range strings.Split(string(buf[:n]), "\n") {
		if _, after, ok := strings.Cut(line, "Link:"); ok {
			return strings.TrimSpace(strings.ReplaceAll(after, "*/", "")), nil
		}
	}
	return "", nil
}
