// ABOUTME: Entry point for the riddleking binary.
// ABOUTME: Executes the root Cobra command and exits 1 on any failure.
package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
