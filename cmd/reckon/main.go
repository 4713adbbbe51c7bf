// Package main is the entry point for the reckon CLI.
package main

import (
	"os"

	"github.com/example/reckon/cmd/reckon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
