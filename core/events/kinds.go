package events

const (
	KindStatus  Kind = "status"
	KindInfo    Kind = "info"
	KindChunk   Kind = "chunk"
	KindTurnEnd Kind = "turn_end"
	KindError   Kind = "error"
)

// Status carries a progress message of the exchange.
type Status struct {
	Base
	Message  string
	DebateID string
}

func NewStatus(message string, opts ...Option) Status {
	return Status{Base: NewBase(KindStatus, opts...), Message: message}
}

// NewStarted creates the first status event of an exchange.
func NewStarted(debateID string, message string) Status {
	status := NewStatus(message)
	status.DebateID = debateID
	return status
}

func (e Status) Payload() Payload {
	p := e.payload()
	p.Message = e.Message
	p.DebateID = e.DebateID
	return p
}

// Info announces what the exchange is about to do next.
type Info struct {
	Base
	Source  Source
	Message string
}

func NewInfo(message string, opts ...Option) Info {
	return Info{Base: NewBase(KindInfo, opts...), Source: SourceSystem, Message: message}
}

func (e Info) Payload() Payload {
	p := e.payload()
	p.Source = e.Source
	p.Message = e.Message
	return p
}

// Chunk carries one text fragment of the in-progress turn.
type Chunk struct {
	Base
	Source Source
	Text   string
}

func NewChunk(source Source, text string, opts ...Option) Chunk {
	return Chunk{Base: NewBase(KindChunk, opts...), Source: source, Text: text}
}

func (e Chunk) Payload() Payload {
	p := e.payload()
	p.Source = e.Source
	p.Text = e.Text
	return p
}

// TurnEnd carries the full text of a completed turn.
type TurnEnd struct {
	Base
	Source   Source
	FullText string
}

func NewTurnEnd(source Source, fullText string, opts ...Option) TurnEnd {
	return TurnEnd{Base: NewBase(KindTurnEnd, opts...), Source: source, FullText: fullText}
}

func (e TurnEnd) Payload() Payload {
	p := e.payload()
	p.Source = e.Source
	p.FullText = e.FullText
	return p
}

// Error carries a human readable failure description.
type Error struct {
	Base
	Message string
}

func NewError(message string, opts ...Option) Error {
	return Error{Base: NewBase(KindError, opts...), Message: message}
}

func (e Error) Payload() Payload {
	p := e.payload()
	p.Message = e.Message
	return p
}
