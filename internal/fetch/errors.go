package fetch

import (
	"errors"
	"fmt"
)

// NetworkError reports a failed HTTP exchange: unreachable host, timeout,
// or a non-2xx status. Judges treat it as a soft failure and degrade.
type NetworkError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a response body that could not be decoded.
// Callers treat it as "no data", never as a hard failure.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.URL, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// PlatformError is terminal for a single fetch: authentication could not be
// established, either because no browser held cookies for the domain or
// because the platform kept serving its login page after a cookie refresh.
// Hint carries guidance shown to the user.
type PlatformError struct {
	Domain string
	Hint   string
	Err    error
}

func (e *PlatformError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s", e.Domain, e.Hint)
	}
	return fmt.Sprintf("%s: %v", e.Domain, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }

// IsPlatformError reports whether err wraps a PlatformError.
func IsPlatformError(err error) bool {
	var pe *PlatformError
	return errors.As(err, &pe)
}
