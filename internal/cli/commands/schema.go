package commands

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/enumtrait/internal/cli/ui"
	"github.com/conduit-lang/enumtrait/internal/orm/codegen"
	"github.com/conduit-lang/enumtrait/internal/orm/schema"
	"github.com/conduit-lang/enumtrait/internal/orm/transaction"
)

func newSchemaCommand(opts *globalOptions) *cobra.Command {
	var (
		apply   bool
		dialect string
	)

	cmd := &cobra.Command{
		Use:   "schema <manifest>",
		Short: "Generate tables for persistent models",
		Long: `Print a CREATE TABLE statement for every table used by a persistent
model. Enum columns are restricted to their declared values with a CHECK
constraint and are NOT NULL unless the enum allows nil. With --apply the
statements run against the configured database in one transaction.`,
		Example: `  # Print PostgreSQL DDL
  enumctl schema models.yaml --dialect pgx

  # Create the tables in the configured database
  enumctl schema models.yaml --apply`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(args[0])
			if err != nil {
				return report(cmd, opts, err)
			}
			defer p.Close()

			if dialect == "" {
				dialect = p.cfg.Database.Driver
			}
			d, err := codegen.ParseDialect(dialect)
			if err != nil {
				return err
			}

			models := make([]*schema.ResourceSchema, 0, p.schemas.Count())
			for _, name := range p.schemas.List() {
				model, _ := p.schemas.Get(name)
				models = append(models, model)
			}

			stmts, err := codegen.NewDDLGenerator(d).GenerateSchema(models)
			if err != nil {
				return err
			}
			if len(stmts) == 0 {
				fmt.Fprint(cmd.OutOrStdout(), ui.Warning("no tables: no model is persistent", opts.noColor))
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(stmts, "\n\n"))

			if !apply {
				return nil
			}
			db, err := p.database()
			if err != nil {
				return report(cmd, opts, &configError{err: err})
			}
			return applySchema(cmd.Context(), p, db, stmts)
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "Create the tables in the configured database")
	cmd.Flags().StringVar(&dialect, "dialect", "", "SQL dialect: pgx or sqlite3 (default database.driver)")

	return cmd
}

// applySchema runs the DDL statements in one transaction
func applySchema(ctx context.Context, p *project, db *sql.DB, stmts []string) error {
	err := transaction.NewManager(db).WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	p.logger.Debug("schema applied", zap.Int("tables", len(stmts)))
	return nil
}
