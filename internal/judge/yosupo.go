package judge

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var reYosupoProblem = regexp.MustCompile(`judge\.yosupo\.jp/problem/([\w-]+)`)

// LibraryChecker handles judge.yosupo.jp. The site has no contests and no
// scrapeable samples; problem names are derived from the URL slug.
type LibraryChecker struct{}

func NewLibraryChecker() *LibraryChecker { return &LibraryChecker{} }

func (l *LibraryChecker) Name() string { return "yosupo" }

func (l *LibraryChecker) Detect(rawURL string) bool {
	return strings.Contains(rawURL, "judge.yosupo.jp")
}

func (l *LibraryChecker) NeedsAuth(string) bool { return false }

// ProblemName title-cases the URL slug: "point_add_range_sum" becomes
// "Point Add Range Sum".
func (l *LibraryChecker) ProblemName(_ context.Context, rawURL string) (string, error) {
	m := reYosupoProblem.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("yosupo: unrecognized problem url %q", rawURL)
	}
	slug := strings.ReplaceAll(m[1], "_", " ")
	return cases.Title(language.English).String(slug), nil
}

func (l *LibraryChecker) ContestProblems(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (l *LibraryChecker) Samples(context.Context, string) ([]SampleTest, error) {
	return nil, ErrNoSamples
}
