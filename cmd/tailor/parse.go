package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/observability"
)

// parseOutput mirrors the HTTP parse responses
type parseOutput struct {
	Value    any                 `json:"value"`
	Degraded bool                `json:"degraded"`
	Reason   string              `json:"reason,omitempty"`
	Source   *ingestion.Metadata `json:"source,omitempty"`
}

func newParseResumeCmd(root *rootOptions) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "parse-resume",
		Short: "Parse a resume text or HTML file into structured Resume JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				return errors.New("--in is required")
			}
			text, meta, err := ingestion.ReadFile(in)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.resumeParser.ParseResumeWithOutcome(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("failed to parse resume: %w", err)
			}

			if root.verbose {
				observability.NewPrinter(cmd.OutOrStdout()).PrintResume(&res.Value)
			}
			if out != "" || !root.verbose {
				return writeJSON(cmd.OutOrStdout(), out, parseOutput{Value: res.Value, Degraded: res.Degraded, Reason: res.Reason, Source: meta})
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to the resume text or HTML file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to output JSON file (default stdout)")
	return cmd
}

func newParseJobCmd(root *rootOptions) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "parse-job",
		Short: "Parse a job posting text or HTML file into structured Job JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				return errors.New("--in is required")
			}
			text, meta, err := ingestion.ReadFile(in)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.jobParser.ParseJobWithOutcome(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("failed to parse job: %w", err)
			}

			if root.verbose {
				observability.NewPrinter(cmd.OutOrStdout()).PrintJob(&res.Value)
			}
			if out != "" || !root.verbose {
				return writeJSON(cmd.OutOrStdout(), out, parseOutput{Value: res.Value, Degraded: res.Degraded, Reason: res.Reason, Source: meta})
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&in, "in", "i", "", "Path to the job posting text or HTML file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Path to output JSON file (default stdout)")
	return cmd
}
