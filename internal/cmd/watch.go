package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/koscakluka/ema-debate/core/events"
	"github.com/koscakluka/ema-debate/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [topic]",
	Short: "Start a debate on a running server and follow it",
	Long: `Start a debate on a running server and print it as it is written.

Interrupting the command stops the debate on the server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("addr", "http://localhost:3000", "address of the debate server")
	watchCmd.Flags().StringP("topic", "t", "", "debate topic")
	watchCmd.Flags().IntP("width", "w", watch.DefaultWidth, "wrap width of status messages")
}

func runWatch(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	topic, _ := cmd.Flags().GetString("topic")
	width, _ := cmd.Flags().GetInt("width")
	if topic == "" && len(args) > 0 {
		topic = args[0]
	}
	if strings.TrimSpace(topic) == "" {
		return errors.New("a debate topic is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := watch.NewClient(addr)
	renderer := watch.NewRenderer(cmd.OutOrStdout(), width)

	terminal, err := client.Watch(ctx, topic, renderer.Render)
	if ctx.Err() != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, stopErr := client.Stop(stopCtx); stopErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), stopErr)
		}
		return nil
	}
	if err != nil {
		return err
	}
	if terminal.Kind() == events.KindError {
		return errors.New(terminal.Payload().Message)
	}
	return nil
}
