package judge

import (
	"context"
	"strings"
)

// Vjudge recognizes vjudge.net URLs so range parsing and file naming work,
// but fetching is unimplemented: vjudge proxies other judges behind a
// JavaScript-rendered UI with no stable markup to scrape.
type Vjudge struct{}

func NewVjudge() *Vjudge { return &Vjudge{} }

func (v *Vjudge) Name() string { return "vjudge" }

func (v *Vjudge) Detect(rawURL string) bool {
	return strings.Contains(rawURL, "vjudge.net")
}

func (v *Vjudge) NeedsAuth(string) bool { return false }

func (v *Vjudge) ProblemName(context.Context, string) (string, error) {
	return "", ErrNotSupported
}

func (v *Vjudge) ContestProblems(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (v *Vjudge) Samples(context.Context, string) ([]SampleTest, error) {
	return nil, ErrNotSupported
}
