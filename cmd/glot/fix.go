package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/glot/pkg/autofix"
)

type fixOptions struct {
	dryRun    bool
	hardcoded bool
}

func newFixCmd(global *globalOptions) *cobra.Command {
	opts := &fixOptions{}
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Insert glot-message-keys comments above unresolved template keys",
		Long: `Insert a glot-message-keys comment above every unresolved translation call
whose key pattern can be inferred, e.g. t(` + "`items.${id}`" + `) gets
// glot-message-keys "Home.items.*". Calls with no inferable pattern are
counted as unfixable and left alone.

With --hardcoded, also insert glot-disable-next-line hardcoded above
hardcoded JSX text.`,
		Example: `  # Preview
  glot fix --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.load(cmd)
			if err != nil {
				return err
			}
			res, err := e.run(cmd)
			if err != nil {
				return err
			}

			fixes, unfixable := autofix.FromUnresolved(res.Unresolved())
			if opts.hardcoded {
				fixes = append(fixes, autofix.FromHardcoded(res.Hardcoded())...)
			}
			stats, err := autofix.Apply(fixes, autofix.Options{DryRun: opts.dryRun})
			if err != nil {
				return err
			}

			verb := "Inserted"
			if opts.dryRun {
				verb = "Would insert"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %d comments in %d files (%d skipped, %d unfixable)\n",
				verb, stats.Processed, stats.FilesModified, stats.Skipped, unfixable)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Report what would change without writing")
	cmd.Flags().BoolVar(&opts.hardcoded, "hardcoded", false, "Also suppress hardcoded text findings")

	return cmd
}
