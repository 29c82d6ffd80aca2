// codetrail watches a source tree and keeps a structural index of it.
// Changed files are parsed with tree-sitter into events (functions,
// classes, imports, calls, comments) and stored in a local bbolt file.
package main

import (
	"os"

	"github.com/corey/codetrail/cmd/codetrail/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
