// main is the entry point for the skymetrics CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/skymetrics/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
