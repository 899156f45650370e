package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cpgrab/cpgrab/internal/judge"
	"github.com/cpgrab/cpgrab/internal/problem"
)

var (
	fetchForce     bool
	fetchStatement bool
	fetchLink      string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <problem|range> [directory]",
	Short: "Fetch sample tests for problems",
	Long: `Fetch sample tests for one or more problems.

Each problem's URL is read from the Link: line in the header comment of
<problem>.cpp in the target directory (current directory by default).
Samples are written next to it as <problem>_1.in, <problem>_1.out, ...

Ranges: "A~E" expands to A B C D E; "A,C2,d" is taken literally.
With --link the URL is given directly and the file name derives from it.`,
	Example: `  cpgrab fetch A
  cpgrab fetch A~E ~/contests/1234
  cpgrab fetch --link https://codeforces.com/contest/1234/problem/A`,
	Args: cobra.MaximumNArgs(2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "overwrite existing sample files")
	fetchCmd.Flags().BoolVar(&fetchStatement, "statement", false, "also save the problem statement as <problem>.md")
	fetchCmd.Flags().StringVar(&fetchLink, "link", "", "fetch directly from a problem URL")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a := newApp()
	ctx := cmd.Context()

	if fetchLink != "" {
		return fetchFromLink(ctx, a, args)
	}
	if len(args) == 0 {
		return errors.New("need a problem or range, e.g. cpgrab fetch A~E (or --link <url>)")
	}

	problems := problem.ParseRange(args[0])
	if len(problems) == 0 {
		return fmt.Errorf("no problems in %q", args[0])
	}
	dir := targetDir(args, 1)

	fmt.Println(headerStyle.Render("--- Fetching Samples ---"))
	fmt.Println()

	fetched := 0
	for _, p := range problems {
		if ctx.Err() != nil {
			warnf("! interrupted")
			break
		}
		if fetchProblem(ctx, a, p, dir) {
			fetched++
		}
	}

	fmt.Println()
	fmt.Println(boldStyle.Render(fmt.Sprintf("Fetched %d/%d problem(s).", fetched, len(problems))))
	if fetched == 0 {
		return fmt.Errorf("all %d problem(s) failed", len(problems))
	}
	return nil
}

// fetchProblem resolves one problem's link from its source header and
// fetches its samples. Failures are warnings so the batch keeps going.
func fetchProblem(ctx context.Context, a *app, prob, dir string) bool {
	source := filepath.Join(dir, prob+".cpp")
	if _, err := os.Stat(source); err != nil {
		warnf("! %s.cpp not found", prob)
		return false
	}
	link, err := problem.ReadLink(source)
	if err != nil {
		warnf("! %s.cpp: %v", prob, err)
		return false
	}
	if link == "" {
		warnf("! %s.cpp has no Link", prob)
		return false
	}
	return saveSamples(ctx, a, prob, link, dir)
}

func fetchFromLink(ctx context.Context, a *app, args []string) error {
	ref, ok := problem.ParseURL(fetchLink)
	if !ok {
		return fmt.Errorf("unrecognized problem url %q", fetchLink)
	}
	dir := targetDir(args, 0)

	fmt.Println(headerStyle.Render("--- Fetching Samples ---"))
	fmt.Println()
	ok = saveSamples(ctx, a, ref.Filename, ref.Link, dir)
	fmt.Println()
	if !ok {
		return fmt.Errorf("fetch failed for %s", ref.Filename)
	}
	return nil
}

func saveSamples(ctx context.Context, a *app, prob, link, dir string) bool {
	j, ok := a.registry.Detect(link)
	if !ok {
		warnf("! unsupported platform for %s", prob)
		return false
	}
	samples, err := j.Samples(ctx, link)
	if err != nil {
		warnf("! %s: %v", prob, err)
		return false
	}
	if len(samples) == 0 {
		warnf("! no samples found for %s", prob)
		return false
	}
	count, err := problem.WriteSamples(dir, prob, samples, fetchForce)
	if err != nil {
		if errors.Is(err, problem.ErrSamplesExist) {
			warnf("! %s: samples already saved, --force overwrites", prob)
		} else {
			warnf("! %s: %v", prob, err)
		}
		return false
	}
	okf("+ %s: %d sample(s) saved", prob, count)

	if fetchStatement {
		saveStatement(ctx, j, prob, link, dir)
	}
	return true
}

func saveStatement(ctx context.Context, j judge.Judge, prob, link, dir string) {
	sf, ok := j.(judge.StatementFetcher)
	if !ok {
		warnf("! %s has no statement support", j.Name())
		return
	}
	md, err := sf.Statement(ctx, link)
	if err != nil {
		warnf("! %s: statement: %v", prob, err)
		return
	}
	path := filepath.Join(dir, prob+".md")
	if err := os.WriteFile(path, []byte(md+"\n"), 0o644); err != nil {
		warnf("! %s: %v", prob, err)
		return
	}
	okf("+ %s: statement saved", prob)
}

// targetDir returns args[i] when it names a directory, otherwise the
// current directory.
func targetDir(args []string, i int) string {
	if len(args) > i {
		if st, err := os.Stat(args[i]); err == nil && st.IsDir() {
			return args[i]
		}
	}
	return "."
}
