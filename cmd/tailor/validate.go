package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

// errInvalidDocument is returned after the problems have been printed
var errInvalidDocument = errors.New("validation failed")

func newValidateCmd(_ *rootOptions) *cobra.Command {
	var kind, path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a JSON document against an embedded schema",
		Long:  "Validate a resume, job or tailoring output JSON file against its embedded schema. Exits non-zero when the document is invalid.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				return errors.New("--json is required")
			}
			k := schemas.Kind(kind)
			switch k {
			case schemas.KindResume, schemas.KindJob, schemas.KindTailoringOutput:
			default:
				return fmt.Errorf("--kind must be resume, job or tailoring_output, got %q", kind)
			}

			p := observability.NewPrinter(cmd.OutOrStdout())
			err := schemas.ValidateFile(k, path)
			if err == nil {
				p.PrintValidation(kind, nil)
				return nil
			}

			var validationErr *schemas.ValidationError
			if !errors.As(err, &validationErr) {
				return err
			}
			problems := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				problems = append(problems, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
			}
			p.PrintValidation(kind, problems)
			return errInvalidDocument
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(schemas.KindResume), "Document kind: resume, job or tailoring_output")
	cmd.Flags().StringVarP(&path, "json", "j", "", "Path to the JSON document")
	return cmd
}
