package main

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/glot/pkg/mcp"
	"github.com/gnana997/glot/pkg/mcplog"
	"github.com/gnana997/glot/pkg/pipeline"
)

type serveOptions struct {
	mcpLog string
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Serve glot's scan results to coding agents over the Model Context Protocol.
Every tool call re-scans the project, so agents always see the files on disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := global.load(cmd)
			if err != nil {
				return err
			}

			logPath := opts.mcpLog
			if logPath == "" && e.project != nil {
				logPath = e.project.path(e.project.MCPLog)
			}
			toolLog, err := mcplog.Open(logPath)
			if err != nil {
				return err
			}
			defer toolLog.Close()

			runner := pipeline.NewRunner(e.logger)
			defer runner.Close()

			e.logger.Info("serving MCP on stdio", "root", e.cfg.Root, "tool_log", logPath)
			return mcpserver.NewServer(e.cfg, runner, toolLog).ServeStdio()
		},
	}

	cmd.Flags().StringVar(&opts.mcpLog, "mcp-log", "", "Append a JSON line per tool call to this file")

	return cmd
}
