package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/enumtrait/internal/cli/ui"
)

func newResolveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <manifest>",
		Short: "Show the resolved metadata of every enum trait",
		Long: `Resolve every enum declaration in the manifest and print its values,
aliases and labels together with the names of the generated members.`,
		Example: `  # Resolve with labels from the default locale
  enumctl resolve models.yaml

  # Resolve with French labels
  enumctl resolve models.yaml --locale fr`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.open(args[0])
			if err != nil {
				return report(cmd, opts, err)
			}
			defer p.Close()

			out := cmd.OutOrStdout()
			declared := p.enums.Declarations()
			if len(declared) == 0 {
				fmt.Fprint(out, ui.Warning("no enum declarations found", opts.noColor))
				return nil
			}

			for _, d := range declared {
				ui.Header(out, d.Model.Name+"."+d.Bundle.Field(), opts.noColor)

				table := ui.NewTable(out, opts.noColor, "Value", "Type", "Alias", "Label")
				aliases := d.Bundle.Aliases()
				for i, opt := range d.Bundle.Options() {
					table.AddRow(fmt.Sprint(opt.Value), fmt.Sprintf("%T", opt.Value), aliases[i], opt.Label)
				}
				table.Render()
				fmt.Fprintln(out)

				members := ui.NewKeyValueTable(out, opts.noColor)
				members.AddRow("allow nil", fmt.Sprint(d.Bundle.AllowNil()))
				members.AddRow("readers", strings.Join([]string{
					d.Members.Values, d.Members.Aliases, d.Members.Labels, d.Members.Options,
				}, ", "))
				members.AddRow("accessors", strings.Join([]string{
					d.Members.Alias, d.Members.Label, d.Members.Display,
				}, ", "))
				members.AddRow("predicates", strings.Join(d.Members.PredicateNames(), ", "))
				if scopes := d.Members.ScopeNames(); len(scopes) > 0 {
					members.AddRow("scopes", strings.Join(scopes, ", "))
				}
				members.Render(2)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
