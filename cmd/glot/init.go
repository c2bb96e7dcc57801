package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type initOptions struct {
	force bool
}

func newInitCmd(global *globalOptions) *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .glot/config.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := global.configPath
			if _, err := os.Stat(path); err == nil && !opts.force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := defaultProjectConfig()
			if global.messages != "" {
				cfg.MessagesRoot = global.messages
			}
			if global.locale != "" {
				cfg.PrimaryLocale = global.locale
			}
			if err := writeProjectConfig(path, cfg); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing config file")

	return cmd
}
