package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/enumtrait/internal/cli/ui"
	"github.com/conduit-lang/enumtrait/internal/manifest"
	"github.com/conduit-lang/enumtrait/internal/orm/record"
	"github.com/conduit-lang/enumtrait/internal/orm/validation"
)

func newCheckCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <manifest> <records>",
		Short: "Write records through their models and validate them",
		Long: `Assign every record's attributes through the write pipeline, so enum
fields are coerced to their declared values, then validate the records.
Exits non-zero when any record is invalid.`,
		Example: `  enumctl check models.yaml records.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(args[0])
			if err != nil {
				return report(cmd, opts, err)
			}
			defer p.Close()

			set, err := manifest.LoadRecordsFile(args[1])
			if err != nil {
				return err
			}
			recs, err := set.Build(p.schemas)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			engine := validation.NewEngine()
			invalid := 0

			for i, rec := range recs {
				label := fmt.Sprintf("%s #%d", rec.Model().Name, i+1)
				ui.Header(out, label, opts.noColor)
				writeAttributes(cmd, opts, p, rec)

				err := engine.ValidateRecord(cmd.Context(), rec)
				var verrs *validation.ValidationErrors
				switch {
				case err == nil:
					ui.WriteSuccess(out, "valid", opts.noColor)
				case errors.As(err, &verrs):
					invalid++
					fmt.Fprint(out, ui.InvalidRecordError(label, fieldMessages(verrs), opts.noColor))
				default:
					return err
				}
				fmt.Fprintln(out)
			}

			p.logger.Debug("records checked", zap.Int("records", len(recs)), zap.Int("invalid", invalid))
			if invalid > 0 {
				return fmt.Errorf("%w: %d of %d", errInvalidRecords, invalid, len(recs))
			}
			return nil
		},
	}
}

// writeAttributes prints the stored attributes, with labels for enum fields
func writeAttributes(cmd *cobra.Command, opts *globalOptions, p *project, rec *record.Record) {
	attrs := rec.Attributes()
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	kv := ui.NewKeyValueTable(cmd.OutOrStdout(), opts.noColor)
	for _, name := range names {
		v := attrs[name]
		text := fmt.Sprintf("%v (%T)", v, v)
		if b, ok := p.enums.Lookup(rec.Model(), name); ok {
			if label, ok := b.LabelOf(v); ok {
				text += " " + label
			}
		}
		kv.AddRow(name, text)
	}
	kv.Render(2)
}

func fieldMessages(verrs *validation.ValidationErrors) []string {
	fields := make([]string, 0, len(verrs.Fields))
	for f := range verrs.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var out []string
	for _, f := range fields {
		for _, msg := range verrs.Fields[f] {
			out = append(out, f+": "+msg)
		}
	}
	return out
}
