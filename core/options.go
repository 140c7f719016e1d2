package orchestration

import (
	"time"

	"github.com/koscakluka/ema-debate/core/llms"
)

const (
	DefaultMaxTurns        = 8
	DefaultMaxWords        = 50
	DefaultProviderTimeout = 60 * time.Second
)

type ExchangeOption func(*Exchange)

// WithParticipant assigns the generator that argues for the given side.
func WithParticipant(speaker Speaker, participant Participant) ExchangeOption {
	return func(e *Exchange) {
		e.participants[speaker] = participant
	}
}

// WithMaxTurns bounds the number of completed turns. Any positive value is
// accepted.
func WithMaxTurns(maxTurns int) ExchangeOption {
	return func(e *Exchange) { e.maxTurns = maxTurns }
}

// WithMaxWords sets the answer length asked for in every prompt. Zero
// leaves the length unconstrained.
func WithMaxWords(maxWords int) ExchangeOption {
	return func(e *Exchange) { e.maxWords = maxWords }
}

// WithProviderTimeout bounds a single provider call, from issuing the prompt
// to the last fragment. Zero disables the bound.
func WithProviderTimeout(timeout time.Duration) ExchangeOption {
	return func(e *Exchange) { e.providerTimeout = timeout }
}

// WithPromptOptions forwards options to every provider call.
func WithPromptOptions(opts ...llms.StreamingPromptOption) ExchangeOption {
	return func(e *Exchange) { e.promptOptions = append(e.promptOptions, opts...) }
}

func WithID(id string) ExchangeOption {
	return func(e *Exchange) {
		if id != "" {
			e.id = id
		}
	}
}
