package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/glot/pkg/pipeline"
	"github.com/gnana997/glot/pkg/util"
)

const version = "0.1.0-dev"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath  string
	root        string
	messages    string
	locale      string
	includes    []string
	ignores     []string
	ignoreTests bool
	workers     int
	logLevel    string
	logFormat   string
}

// exitError ends the process with code without printing anything.
type exitError struct{ code int }

func (e exitError) Error() string { return "exit" }

func exitCode(err error) (int, bool) {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code, true
	}
	return 1, false
}

// env is what a command needs to run the pipeline.
type env struct {
	project *ProjectConfig
	cfg     pipeline.Config
	logger  *slog.Logger
}

func (o *globalOptions) load(cmd *cobra.Command) (*env, error) {
	pc, err := loadProjectConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	e := &env{project: pc, cfg: o.pipelineConfig(pc)}

	var level, format string
	if pc != nil {
		level, format = pc.LogLevel, pc.LogFormat
	}
	e.logger = util.NewLogger(util.LoggerConfig{
		Level:  util.ParseLogLevel(pick(o.logLevel, level, "warn")),
		Format: util.ParseLogFormat(pick(o.logFormat, format, "text")),
		Output: cmd.ErrOrStderr(),
	})
	return e, nil
}

// run executes the pipeline once with a fresh runner.
func (e *env) run(cmd *cobra.Command) (*pipeline.Result, error) {
	return pipeline.Run(cmd.Context(), e.cfg, e.logger)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "glot",
		Short: "Find the i18n message keys a TypeScript/React project uses",
		Long: `glot statically resolves every key passed to next-intl style translation
functions, reports the calls it cannot resolve, and finds hardcoded JSX text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to the project config file")
	f.StringVar(&opts.root, "root", "", "Source root to scan (default: config source_root, else .)")
	f.StringVar(&opts.messages, "messages", "", "Directory holding locale message files")
	f.StringVar(&opts.locale, "locale", "", "Primary locale (default: config primary_locale, else en)")
	f.StringSliceVar(&opts.includes, "include", nil, "Include glob, relative to the source root (repeatable)")
	f.StringSliceVar(&opts.ignores, "ignore", nil, "Ignore glob, relative to the source root (repeatable)")
	f.BoolVar(&opts.ignoreTests, "ignore-tests", false, "Skip *.test.* and *.spec.* files")
	f.IntVar(&opts.workers, "workers", 0, "Worker count (default: based on CPU count)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		newCheckCmd(opts),
		newKeysCmd(opts),
		newFixCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newInitCmd(opts),
		newSetupCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "glot %s\n", version)
			return nil
		},
	}
}
