package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/ema-debate/core/llms"
)

func writeEvent(w http.ResponseWriter, event string, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func TestPromptWithStreamYieldsTextDeltas(t *testing.T) {
	var received requestBody
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		authorization = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, "response.created", `{}`)
		writeEvent(w, "response.output_item.added", `{}`)
		writeEvent(w, "response.output_text.delta", `{"delta":"Remote work "}`)
		writeEvent(w, "response.output_text.delta", `{"delta":""}`)
		writeEvent(w, "response.output_text.delta", `{"delta":"boosts focus."}`)
		writeEvent(w, "response.completed", `{"response":{"usage":{"input_tokens":10,"output_tokens":4,"total_tokens":14}}}`)
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL+"/v1"), WithHTTPClient(server.Client()))
	stream := client.PromptWithStream(context.Background(), "argue for it",
		llms.WithSystemPrompt("be brief"),
		llms.WithMaxOutputTokens(100),
	)

	var text strings.Builder
	for fragment, err := range llms.Fragments(context.Background(), stream) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text.WriteString(fragment)
	}

	if got := text.String(); got != "Remote work boosts focus." {
		t.Fatalf("unexpected text %q", got)
	}
	if authorization != "Bearer test-key" {
		t.Fatalf("unexpected authorization header %q", authorization)
	}
	if !received.Stream || received.Model != DefaultModel {
		t.Fatalf("unexpected request body: %+v", received)
	}
	if received.MaxOutputTokens == nil || *received.MaxOutputTokens != 100 {
		t.Fatalf("expected max output tokens to be forwarded, got %v", received.MaxOutputTokens)
	}
	if len(received.Input) != 2 || received.Input[0].Role != messageRoleDeveloper || received.Input[1].Content != "argue for it" {
		t.Fatalf("unexpected input messages: %+v", received.Input)
	}
}

func TestPromptWithStreamNonOKStatusIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	var fragments int
	var streamErr error
	for _, err := range llms.Fragments(context.Background(), client.PromptWithStream(context.Background(), "prompt")) {
		if err != nil {
			streamErr = err
			break
		}
		fragments++
	}

	if fragments != 0 {
		t.Fatalf("expected no fragments, got %d", fragments)
	}
	if !errors.Is(streamErr, llms.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", streamErr)
	}
}

func TestPromptWithStreamFailedEventAfterTextIsStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, "response.output_text.delta", `{"delta":"first"}`)
		writeEvent(w, "response.failed", `{"response":{"error":{"message":"server overloaded"}}}`)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	var fragments []string
	var streamErr error
	for fragment, err := range llms.Fragments(context.Background(), client.PromptWithStream(context.Background(), "prompt")) {
		if err != nil {
			streamErr = err
			break
		}
		fragments = append(fragments, fragment)
	}

	if len(fragments) != 1 || fragments[0] != "first" {
		t.Fatalf("unexpected fragments %q", fragments)
	}
	if !errors.Is(streamErr, llms.ErrProviderStream) {
		t.Fatalf("expected ErrProviderStream, got %v", streamErr)
	}
	if !strings.Contains(streamErr.Error(), "server overloaded") {
		t.Fatalf("expected provider message in error, got %v", streamErr)
	}
}

func TestPromptWithStreamTruncatedBodyIsStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeEvent(w, "response.output_text.delta", `{"delta":"half an "}`)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	var fragments []string
	var streamErr error
	for fragment, err := range llms.Fragments(context.Background(), client.PromptWithStream(context.Background(), "prompt")) {
		if err != nil {
			streamErr = err
			break
		}
		fragments = append(fragments, fragment)
	}

	if len(fragments) != 1 || fragments[0] != "half an " {
		t.Fatalf("unexpected fragments %q", fragments)
	}
	if !errors.Is(streamErr, llms.ErrProviderStream) || !errors.Is(streamErr, io.ErrUnexpectedEOF) {
		t.Fatalf("expected truncated stream error, got %v", streamErr)
	}
}

func TestPromptWithStreamEmptyBodyIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	var streamErr error
	for _, err := range llms.Fragments(context.Background(), client.PromptWithStream(context.Background(), "prompt")) {
		if err != nil {
			streamErr = err
			break
		}
	}
	if !errors.Is(streamErr, llms.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", streamErr)
	}
}
