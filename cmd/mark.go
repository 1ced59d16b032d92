package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/attendance/domain"
	"github.com/zjrosen/evencheck/internal/flags"
	"github.com/zjrosen/evencheck/internal/log"
	"github.com/zjrosen/evencheck/internal/presentation"
)

type markResult struct {
	Record            presentation.RecordDTO `json:"record"`
	Registered        bool                   `json:"registered"`
	RegistrationError string                 `json:"registration_error,omitempty"`
}

// markOutcome is what a mark did. RegisterErr is set when the record was
// saved but auto-registration was not.
type markOutcome struct {
	Record      domain.Record
	Registered  bool
	RegisterErr error
}

func newMarkCmd(a *app) *cobra.Command {
	var id, name, method, category string

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Mark an individual present today",
		Long: `Mark an individual present for today. Each individual can be marked once
per day.

When the id is not registered and the auto-register flag is on (the default),
the individual is added to the registry after the mark. If that second step
fails the mark stays saved and a warning is printed; register the individual
with student:add.

Examples:
  evencheck mark --id S1 --name Ana
  evencheck mark --id S1 --method "QR Code"
  evencheck mark --id S9 --name Ben --category Physics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				out, err := markAndRegister(cmd.Context(), s, id, name, method, category)
				if err != nil {
					return err
				}
				return reportMark(s, cmd.ErrOrStderr(), out)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "individual id (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the registered name)")
	cmd.Flags().StringVarP(&method, "method", "m", "", "capture method: Manual, QR Code, Biometric, Facial Recognition")
	cmd.Flags().StringVar(&category, "category", "", "department used when auto-registering")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

// markAndRegister marks id present and, when the id is unknown and
// auto-registration is on, registers it. Only a failed mark is an error.
func markAndRegister(ctx context.Context, s *session, id, name, method, category string) (markOutcome, error) {
	rec, err := s.svc.MarkPresent(ctx, id, name, method)
	if err != nil {
		return markOutcome{}, err
	}
	out := markOutcome{Record: rec}
	if _, known := s.svc.Lookup(rec.ID); known || !s.flags.Enabled(flags.FlagAutoRegister) {
		return out, nil
	}

	if _, err := s.svc.AddOrReplace(ctx, rec.ID, rec.Name, category); err != nil {
		log.ErrorErr(log.CatRegistry, "Auto-register failed, mark kept", err, "id", rec.ID)
		out.RegisterErr = err
		return out, nil
	}
	out.Registered = true
	log.Info(log.CatRegistry, "Auto-registered on mark", "id", rec.ID)
	return out, nil
}

func reportMark(s *session, stderr io.Writer, out markOutcome) error {
	rec := out.Record
	if out.RegisterErr != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: %s was marked present but not registered: %v\n", rec.ID, out.RegisterErr)
	}
	if s.out.JSON() {
		res := markResult{Record: presentation.FromRecord(rec), Registered: out.Registered}
		if out.RegisterErr != nil {
			res.RegistrationError = out.RegisterErr.Error()
		}
		return s.out.Encode(res)
	}
	if err := s.out.Message("Marked %s (%s) present on %s at %s via %s", rec.ID, rec.Name, rec.Date, rec.Time, rec.Method); err != nil {
		return err
	}
	if out.Registered {
		return s.out.Message("Registered %s", rec.ID)
	}
	return nil
}
