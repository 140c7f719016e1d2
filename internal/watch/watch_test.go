package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/ema-debate/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseHandler(t *testing.T, feed []events.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, "Remote work should be mandatory", req["topic"])

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, event := range feed {
			data, err := events.Encode(event)
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}
}

func TestWatchFollowsFeedUntilTerminalEvent(t *testing.T) {
	feed := []events.Event{
		events.NewStarted("debate_1", `Debate started on: "Remote work should be mandatory". Waiting for OpenAI...`),
		events.NewInfo(`OpenAI (for) is preparing its argument on: "Remote work should be mandatory"`),
		events.NewChunk(events.SourceOpenAI, "Remote work "),
		events.NewChunk(events.SourceOpenAI, "saves time."),
		events.NewTurnEnd(events.SourceOpenAI, "Remote work saves time."),
		events.NewStatus("Debate round completed.", events.WithEnded()),
		events.NewStatus("never delivered"),
	}
	ts := httptest.NewServer(sseHandler(t, feed))
	defer ts.Close()

	var received []events.Kind
	terminal, err := NewClient(ts.URL).Watch(context.Background(), "Remote work should be mandatory", func(event events.Event) error {
		received = append(received, event.Kind())
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []events.Kind{
		events.KindStatus, events.KindInfo, events.KindChunk, events.KindChunk, events.KindTurnEnd, events.KindStatus,
	}, received)
	require.NotNil(t, terminal)
	assert.True(t, terminal.Ended())
	assert.Equal(t, "Debate round completed.", terminal.Payload().Message)
}

func TestWatchReportsFeedEndedEarly(t *testing.T) {
	ts := httptest.NewServer(sseHandler(t, []events.Event{
		events.NewStarted("debate_1", "Debate started"),
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Watch(context.Background(), "Remote work should be mandatory", nil)
	assert.ErrorIs(t, err, ErrFeedEnded)
}

func TestWatchReportsRejectedStart(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error": "A debate is already in progress."}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Watch(context.Background(), "Remote work should be mandatory", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "A debate is already in progress.")
	assert.Contains(t, err.Error(), "409")
}

func TestStop(t *testing.T) {
	stopped := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stop-debate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if stopped {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Debate not found or already stopped."}`))
			return
		}
		stopped = true
		_, _ = w.Write([]byte(`{"message": "Stop signal sent for the debate."}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL + "/")
	ok, err := client.Stop(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRendererTranscript(t *testing.T) {
	var out bytes.Buffer
	renderer := NewRenderer(&out, 40)

	for _, event := range []events.Event{
		events.NewStarted("debate_1", `Debate started on: "Remote work should be mandatory". Waiting for OpenAI...`),
		events.NewChunk(events.SourceOpenAI, "Remote work "),
		events.NewChunk(events.SourceOpenAI, "saves time."),
		events.NewTurnEnd(events.SourceOpenAI, "Remote work saves time."),
		events.NewChunk(events.SourceGemini, "Offices matter."),
		events.NewError("Server error: quota exceeded.", events.WithEnded()),
	} {
		require.NoError(t, renderer.Render(event))
	}

	transcript := out.String()
	assert.Contains(t, transcript, "OPENAI:")
	assert.Contains(t, transcript, "Remote work")
	assert.Contains(t, transcript, "saves time.")
	assert.Contains(t, transcript, "(openai finished, 4 words)")
	assert.Contains(t, transcript, "GEMINI:")
	assert.Contains(t, transcript, "Server error: quota exceeded.")

	for _, line := range strings.Split(transcript, "\n") {
		assert.LessOrEqual(t, len(strings.TrimRight(line, " ")), 40, "line %q exceeds the width", line)
	}
}
