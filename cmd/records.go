package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/presentation"
	"github.com/zjrosen/evencheck/internal/report"
)

func newRecordsTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "records:today",
		Short: "Show today's attendance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				return s.out.Today(presentation.FromToday(report.Today(s.svc)))
			})
		},
	}
}

func newRecordsForCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "records:for",
		Short: "Show every record for one id",
		Long: `Show every record for one id, registered or not, in the order they were
marked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				return s.out.Records(presentation.FromRecords(s.svc.RecordsForIndividual(id)))
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "individual id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newRecordsRangeCmd(a *app) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:   "records:range",
		Short: "Show records between two dates, inclusive",
		Long: `Show records dated from --start through --end, both inclusive.

Example:
  evencheck records:range --start 2024-03-01 --end 2024-03-31`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				r, err := report.Range(s.svc, start, end)
				if err != nil {
					return err
				}
				return s.out.Range(presentation.FromRange(r))
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first date, YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&end, "end", "", "last date, YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newReportStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report:stats",
		Short: "Summarize attendance by method, department and date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				o, err := s.svc.Overview(cmd.Context())
				if err != nil {
					return err
				}
				return s.out.Overview(presentation.FromOverview(o))
			})
		},
	}
}
