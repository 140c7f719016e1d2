package events

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// EventDebateEnded is the wire value of the ended marker.
const EventDebateEnded = "debate_ended"

// Payload is the JSON object sent to observers for every event.
type Payload struct {
	Type     Kind   `json:"type" jsonschema:"enum=status,enum=info,enum=chunk,enum=turn_end,enum=error"`
	Source   Source `json:"source,omitempty" jsonschema:"enum=openai,enum=gemini,enum=system"`
	Message  string `json:"message,omitempty"`
	Text     string `json:"text,omitempty"`
	FullText string `json:"full_text,omitempty"`
	Event    string `json:"event,omitempty" jsonschema:"enum=debate_ended"`
	DebateID string `json:"debateId,omitempty"`
}

func Encode(event Event) ([]byte, error) {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", event.Kind(), err)
	}
	return data, nil
}

// Decode turns a wire payload back into its typed event.
func Decode(data []byte) (Event, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return p.ToEvent()
}

// ToEvent converts the payload into its typed event.
func (p Payload) ToEvent() (Event, error) {
	var opts []Option
	if p.Event == EventDebateEnded {
		opts = append(opts, WithEnded())
	}

	switch p.Type {
	case KindStatus:
		status := NewStatus(p.Message, opts...)
		status.DebateID = p.DebateID
		return status, nil
	case KindInfo:
		info := NewInfo(p.Message, opts...)
		if p.Source != "" {
			info.Source = p.Source
		}
		return info, nil
	case KindChunk:
		return NewChunk(p.Source, p.Text, opts...), nil
	case KindTurnEnd:
		return NewTurnEnd(p.Source, p.FullText, opts...), nil
	case KindError:
		return NewError(p.Message, opts...), nil
	default:
		return nil, fmt.Errorf("unknown event type %q", p.Type)
	}
}

// Schema describes Payload as a JSON schema document.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(&Payload{})
	schema.Title = "debate event"
	return schema
}
