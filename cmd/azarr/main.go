// Package main provides the azarr CLI tool for inspecting and reading zarr
// arrays from remote and local stores.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
