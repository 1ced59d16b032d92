package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/csvutil"
	"github.com/zjrosen/evencheck/internal/fileutil"
	"github.com/zjrosen/evencheck/internal/report"
)

func newExportRecordsCmd(a *app) *cobra.Command {
	var start, end, out string
	var today bool

	cmd := &cobra.Command{
		Use:   "export:records",
		Short: "Export records in the ledger CSV format",
		Long: `Export records in the ledger CSV format. Without filters every record is
exported. Writes to stdout unless --out is given.

Examples:
  evencheck export:records > all.csv
  evencheck export:records --today --out today.csv
  evencheck export:records --start 2024-03-01 --end 2024-03-31 --out march.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hasRange := cmd.Flags().Changed("start") || cmd.Flags().Changed("end")
			if today && hasRange {
				return fmt.Errorf("%w: --today cannot be combined with --start/--end", domain.ErrInvalidInput)
			}
			return a.withSession(cmd, func(s *session) error {
				var records []domain.Record
				switch {
				case today:
					records = s.svc.RecordsForDate(s.svc.Today())
				case hasRange:
					r, err := report.Range(s.svc, start, end)
					if err != nil {
						return err
					}
					records = r.Records
				default:
					records = s.svc.Records()
				}
				return writeExport(cmd, out, csvutil.EncodeRecords(records), len(records), "records")
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "last date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&today, "today", false, "export only today's records")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

func newExportStudentsCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export:students",
		Short: "Export the registry as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				individuals := s.svc.List()
				var buf bytes.Buffer
				if err := csvutil.WriteIndividuals(&buf, individuals); err != nil {
					return err
				}
				return writeExport(cmd, out, buf.Bytes(), len(individuals), "individuals")
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout)")
	return cmd
}

// writeExport writes data to path atomically, or to stdout when path is
// empty. Progress goes to stderr so stdout stays clean CSV.
func writeExport(cmd *cobra.Command, path string, data []byte, count int, noun string) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d %s to %s\n", count, noun, path)
	return nil
}
