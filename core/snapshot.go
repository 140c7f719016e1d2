package orchestration

import (
	"fmt"

	"github.com/jinzhu/copier"
)

// Snapshot is a point-in-time view of an exchange. It shares no memory with
// the running exchange.
type Snapshot struct {
	ID             string       `json:"id"`
	Topic          string       `json:"topic"`
	State          State        `json:"state"`
	TurnIndex      int          `json:"turn_index"`
	MaxTurns       int          `json:"max_turns"`
	Speaker        Speaker      `json:"speaker"`
	CarriedContext string       `json:"carried_context,omitempty"`
	Cancelled      bool         `json:"cancelled"`
	Transcript     []TurnRecord `json:"transcript"`
}

func (e *Exchange) Snapshot() (Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snapshot := Snapshot{
		ID:             e.id,
		Topic:          e.topic,
		State:          e.state,
		TurnIndex:      e.turnIndex,
		MaxTurns:       e.maxTurns,
		Speaker:        e.speaker,
		CarriedContext: e.carriedContext,
		Cancelled:      e.cancellation.IsCancelled(),
		Transcript:     []TurnRecord{},
	}
	if len(e.transcript) > 0 {
		if err := copier.CopyWithOption(&snapshot.Transcript, e.transcript, copier.Option{DeepCopy: true}); err != nil {
			return Snapshot{}, fmt.Errorf("failed to copy debate transcript: %w", err)
		}
	}
	return snapshot, nil
}
