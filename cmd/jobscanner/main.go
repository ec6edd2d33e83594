// Package main is the entry point of the job scanner: scheduler, read API and one-shot commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "jobscanner",
	Short:         "Scrape career sites, keep matching job postings fresh",
	Long:          "jobscanner fetches postings from configured career sites, keeps those matching the requested roles and retires postings that are no longer listed.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config.yaml (defaults to $JOB_SCANNER_CONFIG)")
	rootCmd.AddCommand(serveCmd, runCmd, sweepCmd, sitesCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
