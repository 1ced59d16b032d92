package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/presentation"
	"github.com/zjrosen/evencheck/internal/report"
)

func newStudentAddCmd(a *app) *cobra.Command {
	var id, name, category string

	cmd := &cobra.Command{
		Use:   "student:add",
		Short: "Register a new individual",
		Long: `Register a new individual. Fails when the id is already registered.

Examples:
  evencheck student:add --id S1 --name Ana
  evencheck student:add --id 007 --name Bond --category Field`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				ind, err := s.svc.AddIfAbsent(cmd.Context(), id, name, category)
				if err != nil {
					return err
				}
				if s.out.JSON() {
					return s.out.Encode(presentation.FromIndividual(ind))
				}
				return s.out.Message("Registered %s (%s) in %s", ind.ID, ind.Name, ind.Category)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "individual id (required)")
	cmd.Flags().StringVar(&name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&category, "category", "", "department (default from config)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newStudentRemoveCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "student:remove",
		Short: "Remove an individual from the registry",
		Long: `Remove an individual from the registry. Their attendance records are kept.

Example:
  evencheck student:remove --id S1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				if err := s.svc.Remove(cmd.Context(), id); err != nil {
					return err
				}
				return s.out.Message("Removed %s", id)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "individual id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newStudentListCmd(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "student:list",
		Short: "List registered individuals",
		Long: `List registered individuals sorted by id.

Examples:
  evencheck student:list
  evencheck student:list --search ana
  evencheck student:list -o json | jq '.[].id'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				individuals := s.svc.List()
				if cmd.Flags().Changed("search") {
					individuals = s.svc.Search(search)
				}
				return s.out.Individuals(presentation.FromIndividuals(individuals))
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive match on id or name")
	return cmd
}

func newStudentShowCmd(a *app) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "student:show",
		Short: "Show an individual and their attendance history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd, func(s *session) error {
				detail, err := report.Individual(s.svc, id)
				if err != nil {
					return err
				}
				return s.out.Detail(presentation.FromDetail(detail))
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "individual id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
