// Package judge routes problem URLs to online judge handlers and fetches
// problem names, contest listings and sample tests from each platform.
package judge

import (
	"context"
	"errors"
	"slices"

	"github.com/cpgrab/cpgrab/internal/fetch"
)

// SampleTest is one sample input/output pair from a problem page. Output may
// be empty when a platform publishes input-only samples.
type SampleTest struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ErrNoSamples means a platform does not publish machine-readable samples.
var ErrNoSamples = errors.New("sample tests not available")

// ErrNotSupported means a judge cannot serve the requested lookup.
var ErrNotSupported = errors.New("not supported for this judge")

// Judge is one supported online judge. All fetching methods fail soft:
// callers fall back to defaults on error instead of aborting.
type Judge interface {
	// Name is the short platform identifier ("codeforces", "atcoder", ...).
	Name() string
	// Detect reports whether rawURL belongs to this judge.
	Detect(rawURL string) bool
	// NeedsAuth reports whether fetching rawURL requires browser cookies.
	// Judges combine a static flag with per-URL overrides for private
	// sections such as Codeforces groups.
	NeedsAuth(rawURL string) bool
	// ProblemName resolves the display name of a single problem.
	ProblemName(ctx context.Context, rawURL string) (string, error)
	// ContestProblems maps problem index to name for a whole contest.
	// Callers treat an error as an empty listing.
	ContestProblems(ctx context.Context, contestURL string) (map[string]string, error)
	// Samples fetches the sample tests from a problem page. A nil slice
	// with an error means nothing usable was found; an empty non-nil
	// slice means the page parsed fine and simply has no samples.
	Samples(ctx context.Context, rawURL string) ([]SampleTest, error)
}

// StatementFetcher is an optional Judge capability: fetching the problem
// statement rendered as Markdown.
type StatementFetcher interface {
	Statement(ctx context.Context, rawURL string) (string, error)
}

// Registry routes URLs to judges. The list is fixed at construction and
// order matters: the first judge whose Detect matches wins, so more
// specific matchers go before generic ones.
type Registry struct {
	judges []Judge
}

// NewRegistry builds the standard judge set on top of one fetch client.
func NewRegistry(f *fetch.Client) *Registry {
	return &Registry{judges: []Judge{
		NewCodeforces(f),
		NewAtCoder(f),
		NewCSES(f),
		NewLibraryChecker(),
		NewVjudge(),
	}}
}

// NewRegistryWith builds a registry from an explicit judge list.
func NewRegistryWith(judges ...Judge) *Registry {
	return &Registry{judges: judges}
}

// Detect returns the first judge claiming rawURL, or false when no judge
// recognizes it. Arbitrary input is fine; unknown URLs are an expected case.
func (r *Registry) Detect(rawURL string) (Judge, bool) {
	for _, j := range r.judges {
		if j.Detect(rawURL) {
			return j, true
		}
	}
	return nil, false
}

// Judges returns the registered judges in routing order.
func (r *Registry) Judges() []Judge {
	return slices.Clone(r.judges)
}

// fetchPage gets one problem page, going through the authenticated path
// when the judge flags the URL as requiring login.
func fetchPage(ctx context.Context, f *fetch.Client, j Judge, rawURL, domain string, markers []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetch.PageTimeout)
	defer cancel()
	if j.NeedsAuth(rawURL) {
		return f.TextWithAuth(ctx, rawURL, fetch.AuthSpec{Domain: domain, LoginMarkers: markers})
	}
	return f.Text(ctx, rawURL)
}
