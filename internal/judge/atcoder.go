package judge

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/cpgrab/cpgrab/internal/fetch"
)

const atcoderDomain = "atcoder.jp"

var (
	reAtCoderTask    = regexp.MustCompile(`atcoder\.jp/contests/([\w-]+)/tasks/([\w-]+)`)
	reAtCoderContest = regexp.MustCompile(`atcoder\.jp/contests/([\w-]+)`)

	// Problem pages carry both a Japanese and an English section with the
	// same sample numbering; keying by number deduplicates them.
	reAtCoderSampleIn  = regexp.MustCompile(`(?s)(?:Sample Input|入力例)\s*(\d+)\s*</h3>\s*<pre>(.*?)</pre>`)
	reAtCoderSampleOut = regexp.MustCompile(`(?s)(?:Sample Output|出力例)\s*(\d+)\s*</h3>\s*<pre>(.*?)</pre>`)
)

// AtCoder scrapes atcoder.jp. There is no public metadata API, so problem
// names come from the contest's tasks table.
type AtCoder struct {
	f *fetch.Client
}

func NewAtCoder(f *fetch.Client) *AtCoder { return &AtCoder{f: f} }

func (a *AtCoder) Name() string { return "atcoder" }

func (a *AtCoder) Detect(rawURL string) bool {
	return strings.Contains(rawURL, atcoderDomain)
}

func (a *AtCoder) NeedsAuth(string) bool { return false }

func (a *AtCoder) ProblemName(ctx context.Context, rawURL string) (string, error) {
	m := reAtCoderTask.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("atcoder: unrecognized task url %q", rawURL)
	}
	contestID, slug := m[1], m[2]
	tasks, err := a.contestTasks(ctx, contestID)
	if err != nil {
		return "", err
	}
	name, ok := tasks[taskLetter(slug)]
	if !ok {
		return "", fmt.Errorf("atcoder: no task %s in contest %s", slug, contestID)
	}
	return name, nil
}

func (a *AtCoder) ContestProblems(ctx context.Context, contestURL string) (map[string]string, error) {
	m := reAtCoderContest.FindStringSubmatch(contestURL)
	if m == nil {
		return nil, fmt.Errorf("atcoder: unrecognized contest url %q", contestURL)
	}
	return a.contestTasks(ctx, m[1])
}

func (a *AtCoder) contestTasks(ctx context.Context, contestID string) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetch.APITimeout)
	defer cancel()

	tasksURL := fmt.Sprintf("https://atcoder.jp/contests/%s/tasks", contestID)
	page, err := a.f.Text(ctx, tasksURL)
	if err != nil {
		return nil, err
	}
	return parseAtCoderTasks(tasksURL, page)
}

func (a *AtCoder) Samples(ctx context.Context, rawURL string) ([]SampleTest, error) {
	page, err := fetchPage(ctx, a.f, a, rawURL, atcoderDomain, nil)
	if err != nil {
		return nil, err
	}
	return parseAtCoderSamples(page), nil
}

// Statement prefers the English section of the task statement and falls
// back to the whole bilingual block.
func (a *AtCoder) Statement(ctx context.Context, rawURL string) (string, error) {
	page, err := fetchPage(ctx, a.f, a, rawURL, atcoderDomain, nil)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", &fetch.ParseError{URL: rawURL, Err: err}
	}
	stmt := doc.Find("#task-statement span.lang-en").First()
	if stmt.Length() == 0 {
		stmt = doc.Find("#task-statement").First()
	}
	if stmt.Length() == 0 {
		return "", &fetch.ParseError{URL: rawURL, Err: errors.New("no task-statement section")}
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

// parseAtCoderTasks reads the tasks table: the first cell links the task
// index, the second links the task name.
func parseAtCoderTasks(rawURL, page string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, &fetch.ParseError{URL: rawURL, Err: err}
	}
	tasks := make(map[string]string)
	doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		href, ok := cells.Eq(0).Find("a").First().Attr("href")
		if !ok || !strings.Contains(href, "/tasks/") {
			return
		}
		name := strings.TrimSpace(cells.Eq(1).Find("a").First().Text())
		if letter := taskLetter(path.Base(href)); letter != "" && name != "" {
			tasks[letter] = name
		}
	})
	return tasks, nil
}

func parseAtCoderSamples(page string) []SampleTest {
	ins := make(map[int]string)
	outs := make(map[int]string)
	for _, m := range reAtCoderSampleIn.FindAllStringSubmatch(page, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			ins[n] = CleanSampleText(m[2])
		}
	}
	for _, m := range reAtCoderSampleOut.FindAllStringSubmatch(page, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			outs[n] = CleanSampleText(m[2])
		}
	}

	samples := make([]SampleTest, 0, len(ins))
	for _, n := range slices.Sorted(maps.Keys(ins)) {
		samples = append(samples, SampleTest{Input: ins[n], Output: outs[n]})
	}
	return samples
}

// taskLetter maps a task slug like "abc300_a" to its table index "A".
func taskLetter(slug string) string {
	i := strings.LastIndexByte(slug, '_')
	if i < 0 {
		return slug
	}
	return strings.ToUpper(slug[i+1:])
}
