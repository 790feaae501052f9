package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumtrait/internal/cli/ui"
	"github.com/conduit-lang/enumtrait/internal/render"
)

func newOptionsCommand(opts *globalOptions) *cobra.Command {
	var (
		radio   bool
		cfg     render.Config
		current string
	)

	cmd := &cobra.Command{
		Use:   "options <manifest> <model> <field>",
		Short: "List the form options of an enum field",
		Long: `List the choices a select (or, with --radio, a radio group) offers for
an enum field. --current marks the matching choice as selected.`,
		Example: `  enumctl options models.yaml Post status --current published
  enumctl options models.yaml Post status --radio --exclude Archived`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(args[0])
			if err != nil {
				return report(cmd, opts, err)
			}
			defer p.Close()

			modelName, field := args[1], args[2]
			model, ok := p.model(modelName)
			if !ok {
				return reportText(cmd, ui.UnknownModelError(modelName, p.schemas.List(), opts.noColor),
					fmt.Errorf("unknown model %s", modelName))
			}

			col, ok := p.enums.Column(model, field)
			if !ok || render.ControlFor(col) != render.ControlSelect {
				return reportText(cmd, ui.UnknownFieldError(modelName, field, p.enums.Fields(model), opts.noColor),
					fmt.Errorf("%s.%s is not an enum field", modelName, field))
			}

			var selected interface{}
			if cmd.Flags().Changed("current") {
				selected = current
			}

			list := render.SelectOptions
			headers := []string{"Label", "Value", "Selected"}
			if radio {
				list = render.RadioOptions
				headers = append(headers, "ID")
			}

			choices, err := list(col, selected, cfg)
			if err != nil {
				return err
			}

			table := ui.NewTable(cmd.OutOrStdout(), opts.noColor, headers...)
			for _, c := range choices {
				mark := ""
				if c.Selected {
					mark = "✓"
				}
				table.AddRow(c.Label, c.Value, mark, c.ID)
			}
			table.Render()
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&radio, "radio", false, "List radio buttons instead of select options")
	flags.StringSliceVar(&cfg.Only, "only", nil, "Keep only these labels or values")
	flags.StringSliceVar(&cfg.Exclude, "exclude", nil, "Drop these labels or values")
	flags.StringVar(&cfg.Prompt, "prompt", "", "Leading blank option text (select only)")
	flags.StringVar(&cfg.ID, "id", "", "Base id of radio buttons (default the field name)")
	flags.StringVar(&current, "current", "", "Current value of the field")

	return cmd
}
