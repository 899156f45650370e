package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cpgrab/cpgrab/internal/judge"
)

// authNotes describes which parts of a judge need browser cookies.
var authNotes = map[string]string{
	"codeforces": "cookies for private groups",
}

var judgesCmd = &cobra.Command{
	Use:   "judges",
	Short: "List supported judges in detection order",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp()
		fmt.Println(headerStyle.Render("Supported judges (detection order):"))
		for i, j := range a.registry.Judges() {
			var caps []string
			if _, ok := j.(judge.StatementFetcher); ok {
				caps = append(caps, "statements")
			}
			if note, ok := authNotes[j.Name()]; ok {
				caps = append(caps, note)
			}
			line := fmt.Sprintf("  %d. %s", i+1, j.Name())
			if len(caps) > 0 {
				line += "  (" + strings.Join(caps, ", ") + ")"
			}
			fmt.Println(line)
		}
	},
}
