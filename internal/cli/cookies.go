package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpgrab/cpgrab/internal/cookies"
)

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage the browser cookie cache",
}

var cookiesRefreshCmd = &cobra.Command{
	Use:   "refresh <domain>",
	Short: "Re-extract cookies for a domain from the browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		domain := args[0]
		cs, err := a.cache.Get(cmd.Context(), domain, true)
		if err != nil {
			return err
		}
		msg := fmt.Sprintf("%d cookie(s) for %s", len(cs), domain)
		if e, ok := a.cache.Entry(domain); ok {
			msg += " from " + e.Browser
		}
		fmt.Println(successStyle.Render(msg))
		return nil
	},
}

var cookiesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached cookies",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.cache.Clear(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("cookie cache cleared"))
		return nil
	},
}

var cookiesShowCmd = &cobra.Command{
	Use:   "show [domain]",
	Short: "Show cached cookie metadata (names only, never values)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		entries := a.cache.Entries()
		if len(args) == 1 {
			e, ok := a.cache.Entry(args[0])
			if !ok {
				return fmt.Errorf("no cached cookies for %s", args[0])
			}
			entries = []cookies.Entry{e}
		}
		if len(entries) == 0 {
			fmt.Println("cookie cache is empty")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %d cookie(s) from %s, fetched %s\n",
				boldStyle.Render(e.Domain), len(e.Cookies), e.Browser,
				e.FetchedAt.Format(time.RFC3339))
			for _, c := range e.Cookies {
				fmt.Printf("  %s  (path %s)\n", c.Name, c.Path)
			}
		}
		return nil
	},
}

func init() {
	cookiesCmd.AddCommand(cookiesRefreshCmd, cookiesClearCmd, cookiesShowCmd)
}
