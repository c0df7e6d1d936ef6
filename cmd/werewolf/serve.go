package main

import (
	"time"

	"github.com/spf13/cobra"

	"werewolf-toolbox/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host matches over HTTP and websockets",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := server.NewManager(cmd.Context(), cfg, log, time.Now().UnixNano())
		return server.Serve(cmd.Context(), cfg.Server.Addr, manager, cfg.Server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
