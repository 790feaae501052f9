package commands

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/enumtrait/internal/cli/ui"
	"github.com/conduit-lang/enumtrait/internal/manifest"
	"github.com/conduit-lang/enumtrait/internal/orm/query"
	"github.com/conduit-lang/enumtrait/internal/orm/transaction"
)

func newScopesCommand(opts *globalOptions) *cobra.Command {
	var (
		execute bool
		seed    string
	)

	cmd := &cobra.Command{
		Use:   "scopes <manifest>",
		Short: "Show the named filters generated for persistent models",
		Long: `Print the SQL of every named filter the enum traits generate. With
--execute the filters run against the configured database and the number
of matching rows is shown.`,
		Example: `  # Show the SQL only
  enumctl scopes models.yaml

  # Insert fixture records, then count rows per filter
  ENUMCTL_DATABASE_URL=file:blog.db enumctl scopes models.yaml --execute --seed records.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed != "" && !execute {
				return fmt.Errorf("--seed requires --execute")
			}

			p, err := opts.open(args[0])
			if err != nil {
				return report(cmd, opts, err)
			}
			defer p.Close()

			ctx := cmd.Context()
			var db *sql.DB
			if execute {
				if db, err = p.database(); err != nil {
					return report(cmd, opts, &configError{err: err})
				}
			}
			if seed != "" {
				if err := seedRecords(ctx, p, db, seed); err != nil {
					return err
				}
			}

			headers := []string{"Model", "Scope", "SQL", "Args"}
			if execute {
				headers = append(headers, "Rows")
			}
			table := ui.NewTable(cmd.OutOrStdout(), opts.noColor, headers...)

			for _, d := range p.enums.Declarations() {
				for _, name := range d.Members.ScopeNames() {
					qb, err := query.NewQueryBuilder(d.Model, db).Scope(name)
					if err != nil {
						return err
					}
					stmt, params, err := qb.ToSQL()
					if err != nil {
						return err
					}
					row := []string{d.Model.Name, name, stmt, fmt.Sprint(params)}

					if execute {
						count, err := qb.Count(ctx)
						if err != nil {
							return fmt.Errorf("%s.%s: %w", d.Model.Name, name, err)
						}
						row = append(row, fmt.Sprint(count))
					}
					table.AddRow(row...)
				}
			}

			if table.Len() == 0 {
				fmt.Fprint(cmd.OutOrStdout(), ui.Warning("no named filters: no enum is declared on a persistent model", opts.noColor))
				return nil
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "Run each filter against the configured database")
	cmd.Flags().StringVar(&seed, "seed", "", "Records file to insert before running the filters")

	return cmd
}

// seedRecords inserts the records of a records file in one transaction
func seedRecords(ctx context.Context, p *project, db *sql.DB, path string) error {
	set, err := manifest.LoadRecordsFile(path)
	if err != nil {
		return err
	}
	recs, err := set.Build(p.schemas)
	if err != nil {
		return err
	}

	err = transaction.NewManager(db).WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, rec := range recs {
			if err := query.Insert(ctx, tx, rec.Model(), rec.Attributes()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed records: %w", err)
	}

	p.logger.Debug("records seeded", zap.String("path", path), zap.Int("records", len(recs)))
	return nil
}
