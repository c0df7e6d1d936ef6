package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"werewolf-toolbox/internal/config"
)

var (
	configPath string
	logLevel   string

	log = logrus.New()
	cfg *config.GameConfig
)

var rootCmd = &cobra.Command{
	Use:           "werewolf",
	Short:         "Run Werewolf matches between humans and LLM players",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		load := config.LoadIfPresent
		if cmd.Flags().Changed("config") {
			load = config.Load
		}
		var err error
		if cfg, err = load(configPath); err != nil {
			return err
		}

		level := logLevel
		if !cmd.Flags().Changed("loglevel") && cfg.Log.Level != "" {
			level = cfg.Log.Level
		}
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			parsed = logrus.InfoLevel
		}
		log.SetLevel(parsed)
		return nil
	},
}

func init() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, ForceColors: true})
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "default_config.yaml", "Path to the configuration file (built-in defaults are used if the default file is absent)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "Set logging level (debug, info, warn, error)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Errorf("Application exited with error: %v", err)
		os.Exit(1)
	}
}
