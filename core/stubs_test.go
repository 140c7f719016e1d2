package orchestration

import (
	"context"
	"sync"

	"github.com/koscakluka/ema-debate/core/events"
	"github.com/koscakluka/ema-debate/core/llms"
)

type contentChunk string

func (contentChunk) FinishReason() *string { return nil }
func (c contentChunk) Content() string     { return string(c) }

type usageChunk llms.Usage

func (usageChunk) FinishReason() *string { return nil }
func (u usageChunk) Usage() llms.Usage   { return llms.Usage(u) }

// scriptedTurn describes how one provider call behaves.
type scriptedTurn struct {
	fragments []string
	// failAt is the fragment index at which err is returned instead.
	failAt int
	err    error
	// block makes the stream wait for its context before producing anything.
	block bool
	// usage is reported after the last fragment when set.
	usage *llms.Usage
}

type scriptedClient struct {
	mu      sync.Mutex
	script  []scriptedTurn
	prompts []string
	// streaming is signalled every time a stream starts being consumed.
	streaming chan struct{}
}

func newScriptedClient(script ...scriptedTurn) *scriptedClient {
	return &scriptedClient{script: script, streaming: make(chan struct{}, 16)}
}

// echoClient answers every prompt with fragments naming the turn.
func echoClient(name string) *scriptedClient {
	client := newScriptedClient()
	for i := range 16 {
		client.script = append(client.script, scriptedTurn{
			fragments: []string{name + " ", "says ", string(rune('a' + i))},
			failAt:    -1,
		})
	}
	return client
}

func (c *scriptedClient) PromptWithStream(_ context.Context, prompt string, _ ...llms.StreamingPromptOption) llms.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := len(c.prompts)
	c.prompts = append(c.prompts, prompt)
	turn := scriptedTurn{failAt: -1}
	if call < len(c.script) {
		turn = c.script[call]
	}
	return scriptedStream{turn: turn, streaming: c.streaming}
}

func (c *scriptedClient) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

type scriptedStream struct {
	turn      scriptedTurn
	streaming chan struct{}
}

func (s scriptedStream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		select {
		case s.streaming <- struct{}{}:
		default:
		}

		if s.turn.block {
			<-ctx.Done()
			yield(nil, ctx.Err())
			return
		}

		for i, fragment := range s.turn.fragments {
			if i == s.turn.failAt {
				yield(nil, s.turn.err)
				return
			}
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(contentChunk(fragment), nil) {
				return
			}
		}
		if s.turn.failAt >= len(s.turn.fragments) {
			yield(nil, s.turn.err)
			return
		}
		if s.turn.usage != nil {
			yield(usageChunk(*s.turn.usage), nil)
		}
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
	// onEvent runs synchronously inside Send, before the event is recorded.
	onEvent func(events.Event) error
}

func (s *recordingSink) Send(event events.Event) error {
	if s.onEvent != nil {
		if err := s.onEvent(event); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]events.Event(nil), s.events...)
}

func (s *recordingSink) OfKind(kind events.Kind) []events.Event {
	var matching []events.Event
	for _, event := range s.Events() {
		if event.Kind() == kind {
			matching = append(matching, event)
		}
	}
	return matching
}

func newTestExchange(topic string, forClient, againstClient llms.StreamingClient, opts ...ExchangeOption) (*Exchange, error) {
	opts = append([]ExchangeOption{
		WithParticipant(SpeakerFor, Participant{Name: "OpenAI", Source: events.SourceOpenAI, Client: forClient}),
		WithParticipant(SpeakerAgainst, Participant{Name: "Gemini", Source: events.SourceGemini, Client: againstClient}),
	}, opts...)
	return NewExchange(topic, opts...)
}
