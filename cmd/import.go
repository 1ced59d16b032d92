package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zjrosen/evencheck/internal/infrastructure/filestore"
	"github.com/zjrosen/evencheck/internal/infrastructure/sqlite"
	"github.com/zjrosen/evencheck/internal/log"
)

func newImportCmd(a *app) *cobra.Command {
	var fromDir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the CSV/JSON data files into the SQLite database",
		Long: `Load the ledger CSV and registry JSON and replace the contents of the SQLite
database with them. Use this once before switching to backend: sqlite.

Unreadable or malformed files are reported and import as empty. Duplicate
(id, date) rows keep their first occurrence.

Examples:
  evencheck import
  evencheck import --from ./old-data`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := a.cfg
			dir := cfg.DataDir
			if fromDir != "" {
				dir = fromDir
			}

			files := filestore.New(
				filepath.Join(dir, cfg.LedgerFile),
				filepath.Join(dir, cfg.RegistryFile),
			)
			res := files.Load(ctx)
			for _, w := range res.Warnings {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: "+w.Error())
			}

			db, err := sqlite.Open(cfg.SQLitePath())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Flush(ctx, res.Snapshot); err != nil {
				return err
			}
			loaded := db.Load(ctx)
			log.Info(log.CatStore, "Imported files into sqlite",
				"from", files.String(), "to", db.Path(),
				"individuals", len(loaded.Individuals), "records", len(loaded.Records))

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d individuals and %d records into %s\n",
				len(loaded.Individuals), len(loaded.Records), db.Path())
			return err
		},
	}
	cmd.Flags().StringVar(&fromDir, "from", "", "directory holding the CSV/JSON files (default data dir)")
	return cmd
}
