package events

import "time"

type Kind string

// Source identifies who produced an event on the wire.
type Source string

const (
	SourceOpenAI Source = "openai"
	SourceGemini Source = "gemini"
	SourceSystem Source = "system"
)

type Event interface {
	Kind() Kind
	Timestamp() time.Time
	// Ended reports whether this is the terminal event of the exchange.
	Ended() bool
	// Payload returns the wire representation of the event.
	Payload() Payload

	sealed()
}

type Base struct {
	kind      Kind
	timestamp time.Time
	ended     bool
}

func NewBase(kind Kind, opts ...Option) Base {
	b := Base{kind: kind, timestamp: time.Now()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

func (b Base) Ended() bool {
	return b.ended
}

func (Base) sealed() {}

func (b Base) payload() Payload {
	p := Payload{Type: b.kind}
	if b.ended {
		p.Event = EventDebateEnded
	}
	return p
}

type Option func(*Base)

// WithEnded marks the event as the last one of the exchange.
func WithEnded() Option {
	return func(b *Base) { b.ended = true }
}

// WithTimestamp overrides the creation time, used when replaying decoded
// events.
func WithTimestamp(timestamp time.Time) Option {
	return func(b *Base) { b.timestamp = timestamp }
}
