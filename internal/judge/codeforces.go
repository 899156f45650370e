package judge

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/cpgrab/cpgrab/internal/fetch"
)

const codeforcesDomain = "codeforces.com"

// codeforcesLoginMarkers appear on the page Codeforces serves instead of
// private content when the session is missing or expired.
var codeforcesLoginMarkers = []string{
	"Fill in the form to login into Codeforces",
	"<title>Login - Codeforces</title>",
}

var (
	reCFProblem = regexp.MustCompile(`codeforces\.com/(?:problemset/problem/(\d+)/([A-Za-z0-9]+)|(?:contest|gym)/(\d+)/problem/([A-Za-z0-9]+)|group/[^/]+/contest/(\d+)/problem/([A-Za-z0-9]+))`)
	reCFContest = regexp.MustCompile(`codeforces\.com/(?:problemset/problem|contest|gym|group/[^/]+/contest)/(\d+)`)
)

// Codeforces covers codeforces.com including gyms and private groups.
// Metadata comes from the contest.standings API endpoint; samples are
// scraped from the problem page.
type Codeforces struct {
	f *fetch.Client
}

func NewCodeforces(f *fetch.Client) *Codeforces { return &Codeforces{f: f} }

func (c *Codeforces) Name() string { return "codeforces" }

func (c *Codeforces) Detect(rawURL string) bool {
	return strings.Contains(rawURL, codeforcesDomain)
}

// NeedsAuth flags group URLs: group contests are only visible to members.
func (c *Codeforces) NeedsAuth(rawURL string) bool {
	return strings.Contains(rawURL, "/group/")
}

type cfProblem struct {
	Index string `json:"index"`
	Name  string `json:"name"`
}

type cfStandings struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  struct {
		Problems []cfProblem `json:"problems"`
	} `json:"result"`
}

// standings asks the contest.standings API for the contest's problem table.
// One standings row is enough: the problems array always comes back whole.
func (c *Codeforces) standings(ctx context.Context, contestID string) ([]cfProblem, error) {
	ctx, cancel := context.WithTimeout(ctx, fetch.APITimeout)
	defer cancel()

	api := fmt.Sprintf("https://codeforces.com/api/contest.standings?contestId=%s&from=1&count=1", contestID)
	var resp cfStandings
	if err := c.f.JSON(ctx, api, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, &fetch.ParseError{URL: api, Err: fmt.Errorf("api status %q: %s", resp.Status, resp.Comment)}
	}
	return resp.Result.Problems, nil
}

func (c *Codeforces) ProblemName(ctx context.Context, rawURL string) (string, error) {
	contestID, index, ok := splitCodeforcesURL(rawURL)
	if !ok {
		return "", fmt.Errorf("codeforces: unrecognized problem url %q", rawURL)
	}
	problems, err := c.standings(ctx, contestID)
	if err != nil {
		return "", err
	}
	for _, p := range problems {
		if p.Index == index {
			return p.Name, nil
		}
	}
	return "", fmt.Errorf("codeforces: no problem %s in contest %s", index, contestID)
}

func (c *Codeforces) ContestProblems(ctx context.Context, contestURL string) (map[string]string, error) {
	contestID, ok := codeforcesContestID(contestURL)
	if !ok {
		return nil, fmt.Errorf("codeforces: unrecognized contest url %q", contestURL)
	}
	problems, err := c.standings(ctx, contestID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(problems))
	for _, p := range problems {
		out[p.Index] = p.Name
	}
	return out, nil
}

func (c *Codeforces) Samples(ctx context.Context, rawURL string) ([]SampleTest, error) {
	page, err := fetchPage(ctx, c.f, c, rawURL, codeforcesDomain, codeforcesLoginMarkers)
	if err != nil {
		return nil, err
	}
	return parseCodeforcesSamples(rawURL, page)
}

// Statement renders the problem statement section as Markdown.
func (c *Codeforces) Statement(ctx context.Context, rawURL string) (string, error) {
	page, err := fetchPage(ctx, c.f, c, rawURL, codeforcesDomain, codeforcesLoginMarkers)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", &fetch.ParseError{URL: rawURL, Err: err}
	}
	stmt := doc.Find("div.problem-statement").First()
	if stmt.Length() == 0 {
		return "", &fetch.ParseError{URL: rawURL, Err: errors.New("no problem-statement section")}
	}
	frag, err := goquery.OuterHtml(stmt)
	if err != nil {
		return "", &fetch.ParseError{URL: rawURL, Err: err}
	}
	md, err := htmltomarkdown.ConvertString(frag)
	if err != nil {
		return "", &fetch.ParseError{URL: rawURL, Err: err}
	}
	return strings.TrimSpace(md), nil
}

// parseCodeforcesSamples pulls paired input/output <pre> blocks out of the
// sample-test section. Newer problems wrap each input line in its own div;
// CleanSampleText folds those back into newlines.
func parseCodeforcesSamples(rawURL, page string) ([]SampleTest, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &fetch.ParseError{URL: rawURL, Err: err}
	}
	section := doc.Find("div.sample-test").First()
	if section.Length() == 0 {
		return []SampleTest{}, nil
	}

	inputs := preContents(section, "div.input pre")
	outputs := preContents(section, "div.output pre")

	samples := make([]SampleTest, 0, len(inputs))
	for i := range min(len(inputs), len(outputs)) {
		samples = append(samples, SampleTest{Input: inputs[i], Output: outputs[i]})
	}
	return samples, nil
}

// preContents collects the cleaned inner HTML of every <pre> matched by
// selector, in document order.
func preContents(section *goquery.Selection, selector string) []string {
	var texts []string
	section.Find(selector).Each(func(_ int, s *goquery.Selection) {
		h, err := s.Html()
		if err != nil {
			return
		}
		texts = append(texts, CleanSampleText(h))
	})
	return texts
}

func splitCodeforcesURL(rawURL string) (contestID, index string, ok bool) {
	m := reCFProblem.FindStringSubmatch(rawURL)
	if m == nil {
		return "", "", false
	}
	for i := 1; i+1 < len(m); i += 2 {
		if m[i] != "" {
			return m[i], strings.ToUpper(m[i+1]), true
		}
	}
	return "", "", false
}

func codeforcesContestID(rawURL string) (string, bool) {
	m := reCFContest.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}
