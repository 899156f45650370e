// Package cli implements the cpgrab command tree.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cpgrab/cpgrab/internal/config"
	"github.com/cpgrab/cpgrab/internal/cookies"
	"github.com/cpgrab/cpgrab/internal/fetch"
	"github.com/cpgrab/cpgrab/internal/judge"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cpgrab",
	Short: "Fetch competitive programming samples from online judges",
	Long: `cpgrab resolves problem URLs to their online judge, fetches problem
metadata and sample tests, and saves them as <problem>_<n>.in/.out files.

Supported: Codeforces (official API + page scraping, including gyms and
private groups), AtCoder, CSES and Library Checker. Private pages reuse
your browser session: log in once in your browser and cpgrab reads the
cookies from its cookie store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(fetchCmd, judgesCmd, cookiesCmd, configCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		return 1
	}
	return 0
}

// app is the engine wiring shared by the commands: config, cookie cache,
// HTTP client and judge registry, built once per invocation.
type app struct {
	cfg      config.Config
	cache    *cookies.Cache
	client   *fetch.Client
	registry *judge.Registry
}

func newApp() *app {
	cfg := config.Load()
	cache := cookies.New(cookies.Options{
		Path:        cookies.CachePath(),
		Enabled:     cfg.CookieCacheEnabled,
		MaxAgeHours: cfg.CookieCacheMaxAgeHours,
		Extractors:  cookies.DetectBrowsers(cfg.PreferredBrowser),
	})
	client := fetch.NewClient(cache)
	return &app{
		cfg:      cfg,
		cache:    cache,
		client:   client,
		registry: judge.NewRegistry(client),
	}
}
