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

const csesDomain = "cses.fi"

var (
	reCSESTask  = regexp.MustCompile(`cses\.fi/problemset/task/(\d+)`)
	reCSESTitle = regexp.MustCompile(`<title>CSES - ([^<]+)</title>`)

	reCSESSampleIn  = regexp.MustCompile(`(?s)<p>Input:</p>\s*<pre>(.*?)</pre>`)
	reCSESSampleOut = regexp.MustCompile(`(?s)<p>Output:</p>\s*<pre>(.*?)</pre>`)
)

// CSES scrapes the cses.fi problem set. Tasks live under stable numeric
// IDs and the page title carries the problem name.
type CSES struct {
	f *fetch.Client
}

func NewCSES(f *fetch.Client) *CSES { return &CSES{f: f} }

func (c *CSES) Name() string { return "cses" }

func (c *CSES) Detect(rawURL string) bool {
	return strings.Contains(rawURL, csesDomain)
}

func (c *CSES) NeedsAuth(string) bool { return false }

func (c *CSES) ProblemName(ctx context.Context, rawURL string) (string, error) {
	m := reCSESTask.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("cses: unrecognized task url %q", rawURL)
	}

	ctx, cancel := context.WithTimeout(ctx, fetch.APITimeout)
	defer cancel()

	taskURL := fmt.Sprintf("https://cses.fi/problemset/task/%s", m[1])
	page, err := c.f.Text(ctx, taskURL)
	if err != nil {
		return "", err
	}
	t := reCSESTitle.FindStringSubmatch(page)
	if t == nil {
		return "", &fetch.ParseError{URL: taskURL, Err: errors.New("no CSES title")}
	}
	return strings.TrimSpace(t[1]), nil
}

// ContestProblems is empty for CSES: the problem set has no contests.
func (c *CSES) ContestProblems(context.Context, string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (c *CSES) Samples(ctx context.Context, rawURL string) ([]SampleTest, error) {
	page, err := fetchPage(ctx, c.f, c, rawURL, csesDomain, nil)
	if err != nil {
		return nil, err
	}
	return parseCSESSamples(page), nil
}

// Statement renders the task body as Markdown.
func (c *CSES) Statement(ctx context.Context, rawURL string) (string, error) {
	page, err := fetchPage(ctx, c.f, c, rawURL, csesDomain, nil)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", &fetch.ParseError{URL: rawURL, Err: err}
	}
	stmt := doc.Find("div.md").First()
	if stmt.Length() == 0 {
		stmt = doc.Find("div.content").First()
	}
	if stmt.Length() == 0 {
		return "", &fetch.ParseError{URL: rawURL, Err: errors.New("no task body")}
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

func parseCSESSamples(page string) []SampleTest {
	ins := reCSESSampleIn.FindAllStringSubmatch(page, -1)
	outs := reCSESSampleOut.FindAllStringSubmatch(page, -1)

	samples := make([]SampleTest, 0, len(ins))
	for i := range min(len(ins), len(outs)) {
		samples = append(samples, SampleTest{
			Input:  CleanSampleText(ins[i][1]),
			Output: CleanSampleText(outs[i][1]),
		})
	}
	return samples
}
