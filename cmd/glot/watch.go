package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/glot/pkg/pipeline"
	"github.com/gnana997/glot/pkg/watch"
)

type watchOptions struct {
	debounce time.Duration
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-check the project whenever a source or message file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.load(cmd)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(e.logger)
			defer runner.Close()

			out := cmd.OutOrStdout()
			w, err := watch.New(e.cfg, runner, watch.Options{Debounce: opts.debounce}, e.logger, func(r watch.Run) {
				printRun(out, r)
			})
			if err != nil {
				return err
			}
			if err := w.Start(cmd.Context()); err != nil {
				return err
			}
			defer w.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().DurationVar(&opts.debounce, "debounce", watch.DefaultDebounce, "Delay after the last change before re-running")

	return cmd
}

func printRun(w io.Writer, r watch.Run) {
	stamp := time.Now().Format("15:04:05")
	if r.Err != nil {
		_, _ = fmt.Fprintf(w, "[%s] run failed: %v\n", stamp, r.Err)
		return
	}
	s := newSummary(r.Result)
	trigger := "initial scan"
	if len(r.Changed) == 1 {
		trigger = relPath(r.Result.Root, r.Changed[0])
	} else if len(r.Changed) > 1 {
		trigger = fmt.Sprintf("%d files changed", len(r.Changed))
	}
	_, _ = fmt.Fprintf(w, "[%s] %s: %d keys, %d unresolved, %d hardcoded (%dms)\n",
		stamp, trigger, s.Keys, s.Unresolved, s.Hardcoded, s.TotalTimeMs)
	for _, f := range findings(r.Result, false) {
		_, _ = fmt.Fprintf(w, "  %s:%d:%d %s\n", f.File, f.Line, f.Col, f.Message)
	}
}
