// Package main provides the resume-tailor CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tailor",
		Short:         "Resume parsing, ATS scoring and job tailoring",
		Long:          "tailor parses resumes and job postings, scores resumes against a job and rewrites bullets to fit it, from the command line or over a REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML or JSON config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Print a readable summary instead of JSON")

	cmd.AddCommand(
		newServeCmd(opts),
		newParseResumeCmd(opts),
		newParseJobCmd(opts),
		newScoreCmd(opts),
		newMatchCmd(opts),
		newTailorCmd(opts),
		newValidateCmd(opts),
		newAllowanceCmd(opts),
	)
	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
