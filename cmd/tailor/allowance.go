package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAllowanceCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowance",
		Short: "Inspect or grant per-user tailoring allowance",
	}
	cmd.AddCommand(newAllowanceShowCmd(root), newAllowanceGrantCmd(root))
	return cmd
}

func newAllowanceShowCmd(root *rootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a user's remaining quota and credits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			database, err := a.connectDB(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if database == nil {
				return errors.New("database_url is required")
			}

			allowance, err := database.GetAllowance(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if allowance == nil {
				return fmt.Errorf("no allowance recorded for user %q", userID)
			}
			return writeJSON(cmd.OutOrStdout(), "", allowance)
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	return cmd
}

func newAllowanceGrantCmd(root *rootOptions) *cobra.Command {
	var (
		userID  string
		quota   int
		credits int
	)

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Set a user's quota and credits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			a, err := loadApp(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer a.Close()

			database, err := a.connectDB(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			if database == nil {
				return errors.New("database_url is required")
			}

			if err := database.GrantAllowance(cmd.Context(), userID, quota, credits); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Granted %s quota=%d credits=%d\n", userID, quota, credits)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID")
	cmd.Flags().IntVar(&quota, "quota", 0, "Included tailoring requests for the period")
	cmd.Flags().IntVar(&credits, "credits", 0, "Purchased tailoring credits")
	return cmd
}
