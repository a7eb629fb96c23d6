package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/ats"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/types"
)

// pairFlags are the inputs shared by score, match and tailor
type pairFlags struct {
	resume string
	job    string
	out    string
}

func (f *pairFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.resume, "resume", "r", "", "Path to Resume JSON")
	cmd.Flags().StringVarP(&f.job, "job", "j", "", "Path to Job JSON")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Path to output JSON file (default stdout)")
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	var flags pairFlags

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a resume against a job for ATS compatibility",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, job, err := readPair(flags.resume, flags.job)
			if err != nil {
				return err
			}

			score := ats.Score(resume, job)
			if root.verbose {
				observability.NewPrinter(cmd.OutOrStdout()).PrintATSScore(&score)
				if flags.out == "" {
					return nil
				}
			}
			return writeJSON(cmd.OutOrStdout(), flags.out, score)
		},
	}
	flags.register(cmd)
	return cmd
}

// matchOutput mirrors the HTTP match response
type matchOutput struct {
	Matches  []types.BulletSimilarityMatch `json:"matches"`
	Degraded bool                          `json:"degraded"`
	Reason   string                        `json:"reason,omitempty"`
}

func newMatchCmd(root *rootOptions) *cobra.Command {
	var flags pairFlags

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Find the resume bullet closest to each job responsibility",
		Long:  "Embed job responsibilities and resume bullets and report, per responsibility, the most similar bullet above the configured threshold. Requires a Gemini API key.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, job, err := readPair(flags.resume, flags.job)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.matcher == nil {
				return errors.New("similarity matching is disabled: enable similarity and set GEMINI_API_KEY")
			}

			res := a.matcher.MatchWithOutcome(cmd.Context(), resume, job)
			if root.verbose {
				observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(res.Value)
				if flags.out == "" {
					return nil
				}
			}
			return writeJSON(cmd.OutOrStdout(), flags.out, matchOutput{Matches: res.Value, Degraded: res.Degraded, Reason: res.Reason})
		},
	}
	flags.register(cmd)
	return cmd
}

func newTailorCmd(root *rootOptions) *cobra.Command {
	var (
		flags pairFlags
		style string
	)

	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Rewrite and reorder resume bullets for a job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, job, err := readPair(flags.resume, flags.job)
			if err != nil {
				return err
			}

			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			outcome, err := a.engine.TailorWithOutcome(ctx, resume, job, types.TailorStyle(style))
			if err != nil {
				return err
			}

			tailored := outcome.Value
			score := ats.Score(tailored.Resume, job)
			resp := types.TailorResponseData{
				Resume:            tailored.Resume,
				MatchScore:        tailored.MatchScore,
				MissingSkills:     tailored.MissingSkills,
				ATSScore:          &score,
				SimilarityMatches: []types.BulletSimilarityMatch{},
				Strategy:          string(outcome.Strategy),
				Degraded:          outcome.Degraded,
			}

			var reasons []string
			if outcome.Degraded {
				reasons = append(reasons, outcome.Reason)
			}
			if a.matcher != nil {
				m := a.matcher.MatchWithOutcome(ctx, tailored.Resume, job)
				resp.SimilarityMatches = m.Value
				if m.Degraded {
					resp.Degraded = true
					reasons = append(reasons, m.Reason)
				}
			}
			if len(reasons) > 0 {
				a.logger.Warn("tailoring degraded", zap.String("reason", strings.Join(reasons, "; ")))
			}

			if root.verbose {
				p := observability.NewPrinter(cmd.OutOrStdout())
				p.PrintTailoring(&resp)
				if len(resp.SimilarityMatches) > 0 {
					p.PrintMatches(resp.SimilarityMatches)
				}
				if flags.out == "" {
					return nil
				}
			}
			return writeJSON(cmd.OutOrStdout(), flags.out, resp)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&style, "style", string(types.StyleConcise), "Rewrite style: concise or detailed")
	return cmd
}
