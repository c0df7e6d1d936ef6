package main

import (
	"github.com/spf13/cobra"

	"werewolf-toolbox/internal/cli"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print the configured deck and what each role does",
	Run: func(cmd *cobra.Command, args []string) {
		cli.RenderRoles(cmd.OutOrStdout(), cfg.Deck)
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
