package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-debate/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

type Stream struct {
	models   contentStreamer
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "prompt gemini stream")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.model))

		if s.models == nil {
			err := fmt.Errorf("gemini client not initialised")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
			return
		}

		received := 0
		for response, err := range s.models.GenerateContentStream(ctx, s.model, s.contents, s.config) {
			if err != nil {
				err = fmt.Errorf("error streaming gemini response: %w", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				logger.WarnContext(ctx, "gemini stream failed", "error", err, "responses_received", received)
				yield(nil, err)
				return
			}
			received++

			chunk := StreamContentChunk{content: responseText(response)}
			if reason := finishReason(response); reason != "" {
				chunk.finishReason = &reason
			}
			if !yield(chunk, nil) {
				return
			}
		}
		span.SetAttributes(attribute.Int("response.chunks", received))
	}
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	candidate := response.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}
	return text.String()
}

func finishReason(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0] == nil {
		return ""
	}
	return string(response.Candidates[0].FinishReason)
}

type StreamContentChunk struct {
	finishReason *string
	content      string
}

func (s StreamContentChunk) FinishReason() *string {
	return s.finishReason
}

func (s StreamContentChunk) Content() string {
	return s.content
}
