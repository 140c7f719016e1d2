package orchestration

import (
	"fmt"

	"github.com/koscakluka/ema-debate/core/events"
	"github.com/koscakluka/ema-debate/core/llms"
)

// Speaker is the side a participant argues for.
type Speaker int

const (
	SpeakerFor Speaker = iota
	SpeakerAgainst
)

// FirstSpeaker always opens the exchange.
const FirstSpeaker = SpeakerFor

// Next returns the speaker that talks after s.
func Next(s Speaker) Speaker {
	if s == SpeakerFor {
		return SpeakerAgainst
	}
	return SpeakerFor
}

func (s Speaker) String() string {
	switch s {
	case SpeakerFor:
		return "for"
	case SpeakerAgainst:
		return "against"
	default:
		return fmt.Sprintf("speaker(%d)", int(s))
	}
}

func (s Speaker) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Speaker) UnmarshalText(text []byte) error {
	switch string(text) {
	case "for":
		*s = SpeakerFor
	case "against":
		*s = SpeakerAgainst
	default:
		return fmt.Errorf("unknown speaker %q", text)
	}
	return nil
}

// Participant is the text generator speaking for one side.
type Participant struct {
	// Name is how the participant is referred to in messages, e.g. "OpenAI".
	Name   string
	Source events.Source
	Client llms.StreamingClient
}
