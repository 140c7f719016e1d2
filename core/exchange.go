package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-debate/core/events"
	"github.com/koscakluka/ema-debate/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidTopic   = errors.New("the debate topic is required")
	ErrInvalidBound   = errors.New("max turns must be positive")
	ErrNoParticipant  = errors.New("participant missing")
	ErrAlreadyStarted = errors.New("exchange already started")
)

type State string

const (
	StateIdle           State = "idle"
	StateRequestingTurn State = "requesting_turn"
	StateStreamingTurn  State = "streaming_turn"
	StateTurnComplete   State = "turn_complete"
	StateFinished       State = "finished"
)

type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishCancelled FinishReason = "cancelled"
	FinishFailed    FinishReason = "failed"
)

// Checkpoint names the place where a cancellation was observed.
type Checkpoint string

const (
	CheckpointNone           Checkpoint = ""
	CheckpointBeforePrompt   Checkpoint = "before_prompt"
	CheckpointMidStream      Checkpoint = "mid_stream"
	CheckpointStreamEnd      Checkpoint = "stream_end"
	CheckpointBeforeNextTurn Checkpoint = "before_next_turn"
)

// Result describes how an exchange finished.
type Result struct {
	Reason         FinishReason
	CompletedTurns int
	// Checkpoint is set when Reason is FinishCancelled.
	Checkpoint Checkpoint
	// Speaker is the side whose turn was pending or in progress when the
	// exchange stopped early.
	Speaker Speaker
	Err     error
}

// TurnRecord is the audit entry of a completed turn.
type TurnRecord struct {
	Index    int           `json:"index"`
	Speaker  Speaker       `json:"speaker"`
	Source   events.Source `json:"source"`
	Prompt   string        `json:"prompt"`
	FullText string        `json:"full_text"`
	// Usage is set when the provider reported token usage for the turn.
	Usage *llms.Usage `json:"usage,omitempty"`
}

// Exchange is one debate on a single topic. It alternates between the two
// participants, feeding each one the other's previous turn, until the turn
// bound is reached, a participant fails or cancellation is requested.
type Exchange struct {
	id              string
	topic           string
	maxTurns        int
	maxWords        int
	providerTimeout time.Duration
	promptOptions   []llms.StreamingPromptOption
	participants    map[Speaker]Participant

	cancellation Cancellation
	started      atomic.Bool
	emit         eventEmitter

	mu             sync.RWMutex
	state          State
	turnIndex      int
	speaker        Speaker
	carriedContext string
	transcript     []TurnRecord
}

func NewExchange(topic string, opts ...ExchangeOption) (*Exchange, error) {
	e := &Exchange{
		id:              "debate_" + uuid.NewString(),
		topic:           strings.TrimSpace(topic),
		maxTurns:        DefaultMaxTurns,
		maxWords:        DefaultMaxWords,
		providerTimeout: DefaultProviderTimeout,
		participants:    map[Speaker]Participant{},
		emit:            noopEventEmitter,
		state:           StateIdle,
		speaker:         FirstSpeaker,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.topic == "" {
		return nil, ErrInvalidTopic
	}
	if e.maxTurns <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBound, e.maxTurns)
	}
	for _, speaker := range []Speaker{SpeakerFor, SpeakerAgainst} {
		participant, ok := e.participants[speaker]
		if !ok || participant.Client == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoParticipant, speaker)
		}
		if participant.Name == "" {
			participant.Name = string(participant.Source)
			e.participants[speaker] = participant
		}
	}

	return e, nil
}

func (e *Exchange) ID() string    { return e.id }
func (e *Exchange) Topic() string { return e.topic }

// Cancel requests the exchange to stop at its next checkpoint. It reports
// whether this call was the one that requested it.
func (e *Exchange) Cancel() bool {
	if e.cancellation.RequestCancel() {
		logger.Info("debate cancellation requested", "debate_id", e.id)
		return true
	}
	return false
}

func (e *Exchange) IsCancelled() bool { return e.cancellation.IsCancelled() }

func (e *Exchange) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Run drives the exchange to completion and delivers its events to sink in
// order. The last delivered event is always marked as ended.
//
// Cancelling ctx is treated like an observer disconnect: the exchange is
// cancelled without reporting an error. A failing sink has the same effect.
// Run may be called once.
func (e *Exchange) Run(ctx context.Context, sink Sink) Result {
	if !e.started.CompareAndSwap(false, true) {
		return Result{Reason: FinishFailed, Err: ErrAlreadyStarted}
	}

	ctx, span := tracer.Start(ctx, "run debate", trace.WithAttributes(
		attribute.String("debate.id", e.id),
		attribute.String("debate.topic", e.topic),
		attribute.Int("debate.max_turns", e.maxTurns),
	))
	defer span.End()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	e.cancellation.afterCancel(cancelRun)
	done := withContextCancelHook(ctx, func() { e.Cancel() })
	defer close(done)

	e.emit = newSinkEmitter(sink, func(err error) {
		logger.InfoContext(ctx, "debate observer disconnected", "debate_id", e.id, "error", err)
		e.Cancel()
	})

	result := e.run(runCtx)

	span.SetAttributes(
		attribute.String("debate.finish_reason", string(result.Reason)),
		attribute.Int("debate.completed_turns", result.CompletedTurns),
	)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}
	return result
}

func (e *Exchange) run(ctx context.Context) Result {
	first := e.participants[FirstSpeaker]
	e.emit(events.NewStarted(e.id, startedMessage(e.topic, first.Name)))

	for {
		turnIndex, speaker := e.position()
		if turnIndex >= e.maxTurns {
			return e.finish(Result{Reason: FinishCompleted, CompletedTurns: turnIndex},
				events.NewStatus(completedMessage, events.WithEnded()))
		}

		if turnIndex > 0 && e.cancellation.IsCancelled() {
			return e.stoppedBefore(CheckpointBeforeNextTurn, speaker, turnIndex)
		}

		if result, finished := e.runTurn(ctx, turnIndex, speaker); finished {
			return result
		}
	}
}

// runTurn plays one turn. It reports true when the exchange has finished.
func (e *Exchange) runTurn(ctx context.Context, turnIndex int, speaker Speaker) (Result, bool) {
	participant := e.participants[speaker]
	opponent := e.participants[Next(speaker)]

	ctx, span := tracer.Start(ctx, "debate turn", trace.WithAttributes(
		attribute.String("debate.id", e.id),
		attribute.Int("debate.turn_index", turnIndex),
		attribute.String("debate.speaker", speaker.String()),
		attribute.String("debate.source", string(participant.Source)),
	))
	defer span.End()

	e.setState(StateRequestingTurn)
	if e.cancellation.IsCancelled() {
		return e.stoppedBefore(CheckpointBeforePrompt, speaker, turnIndex), true
	}
	e.emit(events.NewInfo(preparingMessage(e.topic, speaker, turnIndex, participant.Name, opponent.Name)))
	if e.cancellation.IsCancelled() {
		return e.stoppedBefore(CheckpointBeforePrompt, speaker, turnIndex), true
	}

	e.mu.RLock()
	carriedContext := e.carriedContext
	e.mu.RUnlock()
	prompt := buildPrompt(e.topic, speaker, turnIndex, carriedContext, opponent.Name, e.maxWords)

	callCtx, cancelCall := e.providerContext(ctx)
	defer cancelCall()

	current := newTurn(speaker)
	stream := participant.Client.PromptWithStream(callCtx, prompt, e.promptOptions...)
	e.setState(StateStreamingTurn)

	var usage *llms.Usage
	recordUsage := func(u llms.Usage) {
		usage = &u
		span.SetAttributes(
			attribute.Int("debate.input_tokens", u.InputTokens),
			attribute.Int("debate.output_tokens", u.OutputTokens),
			attribute.Int("debate.total_tokens", u.TotalTokens),
		)
	}

	checkpoint := CheckpointStreamEnd
	for fragment, err := range current.Accumulate(llms.FragmentsWithUsage(callCtx, stream, recordUsage)) {
		if err != nil {
			if e.cancellation.IsCancelled() || ctx.Err() != nil {
				e.Cancel()
				return e.stopped(CheckpointMidStream, speaker, turnIndex, current), true
			}
			err = fmt.Errorf("%s turn %d failed: %w", participant.Name, turnIndex, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.ErrorContext(ctx, "debate turn failed", "debate_id", e.id, "turn", turnIndex, "error", err)
			return e.finish(Result{Reason: FinishFailed, CompletedTurns: turnIndex, Speaker: speaker, Err: err},
				events.NewError(failedMessage(err), events.WithEnded())), true
		}

		if e.cancellation.IsCancelled() {
			checkpoint = CheckpointMidStream
			break
		}
		e.emit(events.NewChunk(participant.Source, fragment))
	}

	if e.cancellation.IsCancelled() {
		span.SetAttributes(attribute.Int("debate.partial_length", len(current.FullText())))
		return e.stopped(checkpoint, speaker, turnIndex, current), true
	}

	current.Complete()
	fullText := current.FullText()
	e.emit(events.NewTurnEnd(participant.Source, fullText))

	e.mu.Lock()
	e.carriedContext = fullText
	e.transcript = append(e.transcript, TurnRecord{
		Index:    turnIndex,
		Speaker:  speaker,
		Source:   participant.Source,
		Prompt:   prompt,
		FullText: fullText,
		Usage:    usage,
	})
	e.turnIndex++
	e.speaker = Next(speaker)
	e.state = StateTurnComplete
	e.mu.Unlock()

	span.SetAttributes(attribute.Int("debate.turn_length", len(fullText)))
	if usage != nil {
		logger.DebugContext(ctx, "debate turn usage", "debate_id", e.id, "turn", turnIndex,
			"input_tokens", usage.InputTokens, "output_tokens", usage.OutputTokens, "total_tokens", usage.TotalTokens)
	}
	return Result{}, false
}

func (e *Exchange) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.providerTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.providerTimeout)
}

func (e *Exchange) stoppedBefore(checkpoint Checkpoint, speaker Speaker, turnIndex int) Result {
	return e.finish(
		Result{Reason: FinishCancelled, CompletedTurns: turnIndex, Checkpoint: checkpoint, Speaker: speaker},
		events.NewStatus(stoppedBeforeMessage(e.participants[speaker].Name), events.WithEnded()),
	)
}

// stopped finishes a cancelled turn. A speaker that has not delivered any
// text yet is reported as not started.
func (e *Exchange) stopped(checkpoint Checkpoint, speaker Speaker, turnIndex int, current *turn) Result {
	current.Abort()
	if len(current.Fragments()) == 0 {
		return e.stoppedBefore(checkpoint, speaker, turnIndex)
	}
	return e.finish(
		Result{Reason: FinishCancelled, CompletedTurns: turnIndex, Checkpoint: checkpoint, Speaker: speaker},
		events.NewStatus(stoppedDuringMessage(e.participants[speaker].Name), events.WithEnded()),
	)
}

func (e *Exchange) finish(result Result, terminal events.Event) Result {
	e.setState(StateFinished)
	e.emit(terminal)
	logger.Info("debate finished",
		"debate_id", e.id,
		"reason", string(result.Reason),
		"checkpoint", string(result.Checkpoint),
		"completed_turns", result.CompletedTurns,
	)
	return result
}

func (e *Exchange) position() (int, Speaker) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.turnIndex, e.speaker
}

func (e *Exchange) setState(state State) {
	e.mu.Lock()
	e.state = state
	e.mu.Unlock()
}
