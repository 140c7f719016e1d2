package orchestration

import (
	"iter"
	"strings"
)

type TurnStatus string

const (
	TurnInProgress TurnStatus = "in_progress"
	TurnComplete   TurnStatus = "complete"
	TurnAborted    TurnStatus = "aborted"
)

// turn accumulates the fragments of one speaker's contribution.
type turn struct {
	speaker   Speaker
	fragments []string
	text      strings.Builder
	status    TurnStatus
}

func newTurn(speaker Speaker) *turn {
	return &turn{speaker: speaker, status: TurnInProgress}
}

// Accumulate passes every fragment on unchanged and appends the ones the
// consumer accepted to the turn text. A consumer that stops early, or a
// failing source, aborts the turn.
func (t *turn) Accumulate(fragments iter.Seq2[string, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for fragment, err := range fragments {
			if t.status != TurnInProgress {
				return
			}
			if err != nil {
				t.Abort()
				yield("", err)
				return
			}
			if !yield(fragment, nil) {
				t.Abort()
				return
			}
			t.fragments = append(t.fragments, fragment)
			t.text.WriteString(fragment)
		}
	}
}

func (t *turn) Complete() {
	if t.status == TurnInProgress {
		t.status = TurnComplete
	}
}

func (t *turn) Abort() {
	if t.status == TurnInProgress {
		t.status = TurnAborted
	}
}

func (t *turn) Status() TurnStatus { return t.status }

func (t *turn) Fragments() []string { return t.fragments }

func (t *turn) FullText() string { return t.text.String() }
