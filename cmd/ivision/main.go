package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	// Подкоманды можно сокращать до однозначного префикса, `o` алиас ocr.
	cobra.EnablePrefixMatching = true

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
