package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gnana997/glot/pkg/pipeline"
)

type checkOptions struct {
	output        string
	noHardcoded   bool
	failHardcoded bool
}

func newCheckCmd(global *globalOptions) *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report unresolvable translation keys and hardcoded text",
		Long: `Scan the source root and report every translation call whose key cannot be
determined statically, every hardcoded JSX text and every invalid key pattern
in a glot-message-keys comment.

Exits with status 1 when unresolved usages are found.`,
		Example: `  # Check the project described by .glot/config.yaml
  glot check

  # Machine-readable output
  glot check -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.output); err != nil {
				return err
			}
			e, err := global.load(cmd)
			if err != nil {
				return err
			}
			res, err := e.run(cmd)
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), res, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", formatTable, "Output format (table, json, yaml)")
	cmd.Flags().BoolVar(&opts.noHardcoded, "no-hardcoded", false, "Do not report hardcoded text")
	cmd.Flags().BoolVar(&opts.failHardcoded, "fail-on-hardcoded", false, "Also exit 1 when hardcoded text is found")

	return cmd
}

func runCheck(w io.Writer, res *pipeline.Result, opts *checkOptions) error {
	report := checkReport{Summary: newSummary(res), Findings: findings(res, !opts.noHardcoded)}

	if opts.output == formatTable {
		if err := writeCheckTable(w, report); err != nil {
			return err
		}
	} else if err := writeStructured(w, opts.output, report); err != nil {
		return err
	}

	if report.Summary.Unresolved > 0 {
		return exitError{code: 1}
	}
	if opts.failHardcoded && !opts.noHardcoded && report.Summary.Hardcoded > 0 {
		return exitError{code: 1}
	}
	return nil
}

func writeCheckTable(w io.Writer, report checkReport) error {
	if len(report.Findings) > 0 {
		tw := newTable(w)
		_, _ = fmt.Fprintln(tw, "LOCATION\tKIND\tMESSAGE")
		for _, f := range report.Findings {
			msg := f.Message
			if f.Hint != "" {
				msg += " (" + f.Hint + ")"
			}
			_, _ = fmt.Fprintf(tw, "%s:%d:%d\t%s\t%s\n", f.File, f.Line, f.Col, f.Kind, msg)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w)
	}

	s := report.Summary
	_, err := fmt.Fprintf(w, "%d files, %d keys, %d resolved, %d unresolved, %d hardcoded (%dms)\n",
		s.Files, s.Keys, s.Resolved, s.Unresolved, s.Hardcoded, s.TotalTimeMs)
	if err == nil && s.ParseFailures > 0 {
		_, err = fmt.Fprintf(w, "%d files could not be parsed\n", s.ParseFailures)
	}
	return err
}
