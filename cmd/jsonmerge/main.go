// Command jsonmerge merges JSON (or YAML) instances according to a JSON
// Schema annotated with mergeStrategy/mergeOptions, and can derive the
// schema of a merge's result or validate an instance on its own.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
