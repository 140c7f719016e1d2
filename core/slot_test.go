package orchestration

import (
	"context"
	"errors"
	"testing"
)

func TestSlotAllowsOneActiveExchange(t *testing.T) {
	var slot Slot

	first, err := newTestExchange(remoteWorkTopic, echoClient("openai"), echoClient("gemini"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newTestExchange("Cats are better than dogs", echoClient("openai"), echoClient("gemini"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := slot.Acquire(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := slot.Acquire(second); !errors.Is(err, ErrExchangeActive) {
		t.Fatalf("expected ErrExchangeActive, got %v", err)
	}

	slot.Release(second)
	if slot.Active() != first {
		t.Fatalf("expected releasing a non-holder to keep the active exchange")
	}

	slot.Release(first)
	if err := slot.Acquire(second); err != nil {
		t.Fatalf("expected slot to be free after release, got %v", err)
	}
}

func TestSlotStopIsEffectiveOnce(t *testing.T) {
	var slot Slot
	if slot.Stop() {
		t.Fatalf("expected stop without an active exchange to report false")
	}

	forClient := newScriptedClient(scriptedTurn{block: true, failAt: -1})
	exchange, err := newTestExchange(remoteWorkTopic, forClient, echoClient("gemini"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := slot.Acquire(exchange); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resultCh := make(chan Result, 1)
	go func() { resultCh <- exchange.Run(context.Background(), &recordingSink{}) }()
	<-forClient.streaming

	if !slot.Stop() {
		t.Fatalf("expected first stop to take effect")
	}
	if slot.Stop() {
		t.Fatalf("expected second stop to observe the exchange as already stopped")
	}

	if result := <-resultCh; result.Reason != FinishCancelled {
		t.Fatalf("expected cancelled exchange, got %+v", result)
	}
}

func TestSlotStopIgnoresFinishedExchange(t *testing.T) {
	var slot Slot

	exchange, err := newTestExchange(remoteWorkTopic, echoClient("openai"), echoClient("gemini"), WithMaxTurns(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := slot.Acquire(exchange); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result := exchange.Run(context.Background(), &recordingSink{}); result.Reason != FinishCompleted {
		t.Fatalf("expected completed exchange, got %+v", result)
	}
	if slot.Active() != exchange {
		t.Fatalf("expected exchange to still hold the slot before release")
	}

	if slot.Stop() {
		t.Fatalf("expected stop of a finished exchange to report false")
	}
	if exchange.IsCancelled() {
		t.Fatalf("expected finished exchange not to be marked cancelled")
	}
}
