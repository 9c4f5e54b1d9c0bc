// Command catalogctl manages catalog content from the shell: CSV imports,
// listings, query previews and seeding the featured hospitals.
package main

import (
	"os"
)

func main() {
	a := &app{out: os.Stdout, open: openServices}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}
