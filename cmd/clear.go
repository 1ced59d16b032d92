package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("refusing to clear every record without --yes")

func newClearTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear:today",
		Short: "Remove today's records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				removed, err := s.svc.ClearToday(cmd.Context())
				if err != nil {
					return err
				}
				return s.out.Message("Removed %d records for %s", removed, s.svc.Today())
			})
		},
	}
}

func newClearDateCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "clear:date",
		Short: "Remove the records of one date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				removed, err := s.svc.ClearForDate(cmd.Context(), date)
				if err != nil {
					return err
				}
				return s.out.Message("Removed %d records for %s", removed, date)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to clear, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func newClearAllCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear:all",
		Short: "Remove every record",
		Long:  `Remove every record from the ledger. The registry is kept. Requires --yes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errNotConfirmed
			}
			return a.withSession(cmd, func(s *session) error {
				removed, err := s.svc.ClearAll(cmd.Context())
				if err != nil {
					return err
				}
				return s.out.Message("Removed %d records", removed)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing every record")
	return cmd
}
