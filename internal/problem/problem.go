// Package problem holds the helpers around the fetch engine: problem range
// and URL parsing, source header reading and sample file persistence.
package problem

import (
	"regexp"
	"strings"
)

// Ref is the structured form of a problem URL: where the source file
// belongs, how to name it and which judge fetches it.
type Ref struct {
	Platform  string // judge identifier ("codeforces", "atcoder", ...)
	Dir       string // canonical archive directory for the platform
	ContestID string
	Letter    string
	Filename  string // suggested source name, no extension
	Link      string
}

var (
	reRefCFProblemset = regexp.MustCompile(`codeforces\.com/problemset/problem/(\d+)/([A-Za-z]\d*)`)
	reRefCFContest    = regexp.MustCompile(`codeforces\.com/contest/(\d+)/problem/([A-Za-z]\d*)`)
	reRefCFGym        = regexp.MustCompile(`codeforces\.com/gym/(\d+)/problem/([A-Za-z]\d*)`)
	reRefAtCoder      = regexp.MustCompile(`atcoder\.jp/contests/([^/]+)/tasks/([^/?#]+)`)
	reRefYosupo       = regexp.MustCompile(`judge\.yosupo\.jp/problem/([^/?#]+)`)
	reRefCSES         = regexp.MustCompile(`cses\.fi/problemset/task/(\d+)`)
)

// ParseURL recognizes problem URLs of the supported judges. Gym problems
// get a "gym" filename prefix so they do not collide with regular contests
// sharing the same numeric ID space.
func ParseURL(rawURL string) (Ref, bool) {
	rawURL = strings.TrimSpace(rawURL)

	if m := reRefCFProblemset.FindStringSubmatch(rawURL); m != nil {
		return cfRef(rawURL, m[1], m[2], m[1]+m[2]), true
	}
	if m := reRefCFContest.FindStringSubmatch(rawURL); m != nil {
		return cfRef(rawURL, m[1], m[2], m[1]+m[2]), true
	}
	if m := reRefCFGym.FindStringSubmatch(rawURL); m != nil {
		return cfRef(rawURL, m[1], m[2], "gym"+m[1]+m[2]), true
	}
	if m := reRefAtCoder.FindStringSubmatch(rawURL); m != nil {
		return Ref{
			Platform:  "atcoder",
			Dir:       "AtCoder/Problemset",
			ContestID: m[1],
			Letter:    taskLetter(m[2]),
			Filename:  m[2],
			Link:      rawURL,
		}, true
	}
	if m := reRefYosupo.FindStringSubmatch(rawURL); m != nil {
		return Ref{
			Platform:  "yosupo",
			Dir:       "Yosupo",
			ContestID: m[1],
			Letter:    m[1],
			Filename:  m[1],
			Link:      rawURL,
		}, true
	}
	if m := reRefCSES.FindStringSubmatch(rawURL); m != nil {
		return Ref{
			Platform:  "cses",
			Dir:       "CSES",
			ContestID: "problemset",
			Letter:    m[1],
			Filename:  m[1],
			Link:      rawURL,
		}, true
	}
	return Ref{}, false
}

func cfRef(link, contestID, letter, filename string) Ref {
	return Ref{
		Platform:  "codeforces",
		Dir:       "Codeforces/Problemset",
		ContestID: contestID,
		Letter:    letter,
		Filename:  filename,
		Link:      link,
	}
}

func taskLetter(taskID string) string {
	i := strings.LastIndexByte(taskID, '_')
	if i < 0 {
		return taskID
	}
	return strings.ToUpper(taskID[i+1:])
}
