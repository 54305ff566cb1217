// Package main provides the jprofile CLI, which classifies the columns of a
// CSV, TSV or XLSX file and prints their descriptive statistics.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"jprofile/internal/config"
)

func main() {
	// A missing .env file is normal; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := newRootCmd(cfg, os.Stdout, os.Stderr)

	err = rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
