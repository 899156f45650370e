// cpgrab fetches competitive-programming problem metadata and sample test
// cases from online judges (Codeforces, AtCoder, CSES, Library Checker),
// reusing browser sessions for private pages.
package main

import (
	"os"

	"github.com/cpgrab/cpgrab/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
