package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/ema-debate/core/events"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "ema-debate", rootCmd.Use)

	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["watch"])
}

func TestServeRequiresCredentials(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := executeCommand(rootCmd, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestWatchRequiresTopic(t *testing.T) {
	_, err := executeCommand(rootCmd, "watch", "--topic", "  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic is required")
}

func TestWatchRendersDebate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/start-debate", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, event := range []events.Event{
			events.NewStarted("debate_1", `Debate started on: "Pineapple on pizza". Waiting for OpenAI...`),
			events.NewChunk(events.SourceOpenAI, "Sweet and savory."),
			events.NewTurnEnd(events.SourceOpenAI, "Sweet and savory."),
			events.NewError("Server error: provider unavailable.", events.WithEnded()),
		} {
			data, err := events.Encode(event)
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}))
	defer ts.Close()

	output, err := executeCommand(rootCmd, "watch", "--addr", ts.URL, "--topic", "", "Pineapple on pizza")
	require.Error(t, err, "a debate ending in an error fails the command")
	assert.Contains(t, err.Error(), "provider unavailable")
	assert.Contains(t, output, "Pineapple on pizza")
	assert.Contains(t, output, "Sweet and savory.")
}
