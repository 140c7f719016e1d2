package orchestration

import "github.com/koscakluka/ema-debate/core/events"

// Sink delivers events to the observer of an exchange. A returned error
// means the observer is gone.
type Sink interface {
	Send(events.Event) error
}

type SinkFunc func(events.Event) error

func (f SinkFunc) Send(event events.Event) error { return f(event) }

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newSinkEmitter forwards events to sink in call order. After the first
// failed delivery every further event is dropped and onDisconnect runs
// once.
func newSinkEmitter(sink Sink, onDisconnect func(error)) eventEmitter {
	if sink == nil {
		return noopEventEmitter
	}

	disconnected := false
	return func(event events.Event) {
		if disconnected {
			return
		}
		if err := sink.Send(event); err != nil {
			disconnected = true
			if onDisconnect != nil {
				onDisconnect(err)
			}
		}
	}
}
