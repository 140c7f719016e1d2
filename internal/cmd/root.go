package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

var rootCmd = &cobra.Command{
	Use:   "ema-debate",
	Short: "Turn-based debate between two language models",
	Long: `ema-debate runs a streamed debate between two language models on a
topic of your choice. OpenAI argues in favor of the topic, Gemini argues
against it, and every turn is delivered to the observer as it is written.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (yaml, json or toml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	// Variables already present in the environment win over .env values.
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}
}
