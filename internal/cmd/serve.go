package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	orchestration "github.com/koscakluka/ema-debate/core"
	"github.com/koscakluka/ema-debate/core/events"
	"github.com/koscakluka/ema-debate/core/llms/gemini"
	"github.com/koscakluka/ema-debate/core/llms/openai"
	"github.com/koscakluka/ema-debate/internal/config"
	"github.com/koscakluka/ema-debate/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve debates over HTTP",
	Long: `Serve debates over HTTP.

POST /start-debate with a topic opens a server-sent event stream of the
debate, GET /stop-debate stops it. Both OPENAI_API_KEY and GEMINI_API_KEY
must be set, either in the environment or in a .env file.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default 3000, env PORT)")
	serveCmd.Flags().Int("max-turns", 0, "number of turns per debate (default 8)")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("debate.max_turns", serveCmd.Flags().Lookup("max-turns"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper(), viper.GetString("config"))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openaiClient := openai.NewClient(cfg.OpenAI.APIKey,
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
	)
	geminiClient, err := gemini.NewClient(ctx, cfg.Gemini.APIKey,
		gemini.WithModel(cfg.Gemini.Model),
		gemini.WithBaseURL(cfg.Gemini.BaseURL),
	)
	if err != nil {
		return err
	}

	srv := server.New(server.Participants{
		For:     orchestration.Participant{Name: "OpenAI", Source: events.SourceOpenAI, Client: openaiClient},
		Against: orchestration.Participant{Name: "Gemini", Source: events.SourceGemini, Client: geminiClient},
	}, server.WithExchangeOptions(
		orchestration.WithMaxTurns(cfg.Debate.MaxTurns),
		orchestration.WithMaxWords(cfg.Debate.MaxWords),
		orchestration.WithProviderTimeout(cfg.Debate.ProviderTimeout),
	))

	if err := srv.Start(ctx, fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		return err
	}
	slog.Info("debate server started",
		"addr", srv.Addr(),
		"openai_model", openaiClient.Model(),
		"gemini_model", geminiClient.Model(),
		"max_turns", cfg.Debate.MaxTurns,
	)

	<-ctx.Done()
	slog.Info("shutting down debate server")
	return srv.Shutdown(context.Background())
}
