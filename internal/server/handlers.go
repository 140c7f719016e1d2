package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	orchestration "github.com/koscakluka/ema-debate/core"
	"github.com/koscakluka/ema-debate/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStartBodyBytes = 64 << 10

const (
	messageTopicRequired = "The debate topic is required."
	messageDebateActive  = "A debate is already in progress."
	messageStopSent      = "Stop signal sent for the debate."
	messageNotFound      = "Debate not found or already stopped."
	messageNoDebate      = "No debate in progress."
)

type startRequest struct {
	Topic string `json:"topic"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// admit validates topic and claims the debate slot for a new exchange. On
// failure the response has already been written.
func (s *Server) admit(ctx context.Context, w http.ResponseWriter, topic string) (*orchestration.Exchange, bool) {
	_, span := tracer.Start(ctx, "admit debate", trace.WithAttributes(attribute.String("debate.topic", topic)))
	defer span.End()

	exchange, err := s.newExchange(topic)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, orchestration.ErrInvalidTopic) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: messageTopicRequired})
			return nil, false
		}
		logger.ErrorContext(ctx, "failed to create debate", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return nil, false
	}

	if err := s.slot.Acquire(exchange); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeJSON(w, http.StatusConflict, errorResponse{Error: messageDebateActive})
		return nil, false
	}

	span.SetAttributes(attribute.String("debate.id", exchange.ID()))
	return exchange, true
}

func (s *Server) handleStartDebate(w http.ResponseWriter, r *http.Request) {
	topic, err := readTopic(w, r)
	if err != nil {
		logger.InfoContext(r.Context(), "rejected debate start", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: messageTopicRequired})
		return
	}

	exchange, ok := s.admit(r.Context(), w, topic)
	if !ok {
		return
	}

	sink, err := newSSESink(w)
	if err != nil {
		s.slot.Release(exchange)
		logger.ErrorContext(r.Context(), "failed to open event stream", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	logger.InfoContext(r.Context(), "debate started", "debate_id", exchange.ID(), "topic", exchange.Topic())
	s.run(r.Context(), exchange, sink)
}

func (s *Server) handleStopDebate(w http.ResponseWriter, r *http.Request) {
	if !s.slot.Stop() {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: messageNotFound})
		return
	}
	logger.InfoContext(r.Context(), "debate stop requested")
	writeJSON(w, http.StatusOK, messageResponse{Message: messageStopSent})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	active := s.slot.Active()
	if active == nil {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: messageNoDebate})
		return
	}

	snapshot, err := active.Snapshot()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, events.Schema())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"debate_in_progress": s.slot.Active() != nil,
	})
}

// readTopic accepts the topic as a JSON body or as a form field.
func readTopic(w http.ResponseWriter, r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req startRequest
		body := http.MaxBytesReader(w, r.Body, maxStartBodyBytes)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(req.Topic), nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxStartBodyBytes)
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.FormValue("topic")), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
