package main

import (
	"strings"

	"github.com/spf13/cobra"

	"tvcatalog/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the published catalog to addon clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind := strings.TrimSpace(bindFlag); bind != "" {
				cfg.Server.Bind = bind
			}
			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, version, logger)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (overrides server.bind)")
	return cmd
}
