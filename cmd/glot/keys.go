package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/glot/pkg/locale"
	"github.com/gnana997/glot/pkg/pipeline"
)

type keysOptions struct {
	output  string
	prefix  string
	missing bool
	unused  bool
}

type keyRow struct {
	Key    string `json:"key" yaml:"key"`
	Usages int    `json:"usages" yaml:"usages"`
	// Location is the first usage site.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
}

func newKeysCmd(global *globalOptions) *cobra.Command {
	opts := &keysOptions{}
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the message keys the code uses",
		Long: `List every fully qualified message key the source root uses, with its
number of usage sites.

--missing lists used keys absent from the primary locale.
--unused lists primary locale keys no code uses.`,
		Example: `  # Keys under the Auth namespace
  glot keys --prefix Auth.

  # Keys the code needs but messages/en.json lacks
  glot keys --missing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.output); err != nil {
				return err
			}
			if opts.missing && opts.unused {
				return fmt.Errorf("--missing and --unused are mutually exclusive")
			}
			e, err := global.load(cmd)
			if err != nil {
				return err
			}
			res, err := e.run(cmd)
			if err != nil {
				return err
			}
			var msgs *locale.Messages
			if opts.missing || opts.unused {
				if msgs, err = locale.Load(e.cfg.MessagesRoot, e.cfg.PrimaryLocale); err != nil {
					return err
				}
			}
			return runKeys(cmd.OutOrStdout(), res, msgs, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", formatTable, "Output format (table, json, yaml)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Only keys starting with this prefix")
	cmd.Flags().BoolVar(&opts.missing, "missing", false, "Only used keys missing from the primary locale")
	cmd.Flags().BoolVar(&opts.unused, "unused", false, "Only primary locale keys that are never used")

	return cmd
}

func keyRows(res *pipeline.Result, msgs *locale.Messages, opts *keysOptions) []keyRow {
	rows := []keyRow{}
	if opts.unused {
		used := res.KeySet()
		for _, k := range msgs.SortedKeys() {
			if _, ok := used[k]; !ok && strings.HasPrefix(k, opts.prefix) {
				rows = append(rows, keyRow{Key: k})
			}
		}
		return rows
	}

	for _, ku := range res.ResolvedKeys() {
		if !strings.HasPrefix(ku.Key, opts.prefix) {
			continue
		}
		if opts.missing {
			if _, ok := msgs.Entries[ku.Key]; ok {
				continue
			}
		}
		loc := ku.Usages[0].Context.Location
		rows = append(rows, keyRow{
			Key:      ku.Key,
			Usages:   len(ku.Usages),
			Location: fmt.Sprintf("%s:%d", relPath(res.Root, loc.File), loc.Line),
		})
	}
	return rows
}

func runKeys(w io.Writer, res *pipeline.Result, msgs *locale.Messages, opts *keysOptions) error {
	rows := keyRows(res, msgs, opts)
	if opts.output != formatTable {
		return writeStructured(w, opts.output, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No keys found.")
		return err
	}

	tw := newTable(w)
	if opts.unused {
		_, _ = fmt.Fprintln(tw, "KEY")
		for _, r := range rows {
			_, _ = fmt.Fprintln(tw, r.Key)
		}
		return tw.Flush()
	}
	_, _ = fmt.Fprintln(tw, "KEY\tUSAGES\tFIRST USED")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Key, r.Usages, r.Location)
	}
	return tw.Flush()
}
