package main

import (
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"werewolf-toolbox/internal/cli"
)

var (
	rosterPath string
	godView    bool
	seed       int64
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a match in the terminal",
	Long:  `Seats the configured roster (or --roster) and plays one match. Human seats are prompted on the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seats := cfg.DefaultRoster()
		if rosterPath != "" {
			var err error
			if seats, err = cfg.LoadRoster(rosterPath); err != nil {
				return err
			}
		}
		if !cmd.Flags().Changed("seed") {
			seed = time.Now().UnixNano()
		}
		log.WithField("seed", seed).Debug("Seeding match")

		ui := cli.NewCLI(log)
		defer ui.Close()
		return ui.Play(cmd.Context(), cfg, seats, rand.New(rand.NewSource(seed)), godView)
	},
}

func init() {
	playCmd.Flags().StringVar(&rosterPath, "roster", "", "YAML roster file (defaults to the configured seats)")
	playCmd.Flags().BoolVar(&godView, "god", false, "Show every private entry and thought")
	playCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for role dealing and tie-breaks")
	rootCmd.AddCommand(playCmd)
}

