package hub

import (
	"testing"
	"time"

	"github.com/stegus64/plucklogviz/internal/model"
)

func TestHubBroadcast(t *testing.T) {
	h := New()
	sub1 := h.Subscribe()
	sub2 := h.Subscribe()

	tl := &model.Timeline{Title: "rebuild-1"}
	h.Publish(tl)

	// Both subscribers should receive it.
	select {
	case got := <-sub1:
		if got.Title != "rebuild-1" {
			t.Errorf("sub1: expected rebuild-1, got %s", got.Title)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("sub1: timed out")
	}

	select {
	case got := <-sub2:
		if got.Title != "rebuild-1" {
			t.Errorf("sub2: expected rebuild-1, got %s", got.Title)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("sub2: timed out")
	}

	if h.Latest() != tl {
		t.Error("expected the published timeline recorded as latest")
	}
}

func TestHubSlowConsumer(t *testing.T) {
	h := New()

	// Subscribe but never read — simulates a stalled websocket.
	_ = h.Subscribe()

	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(&model.Timeline{Title: "x"})
	}

	if h.Dropped() == 0 {
		t.Error("expected dropped notices for slow consumer, got 0")
	}
	// The latest state is never lost.
	if h.Latest() == nil {
		t.Error("expected latest timeline to be recorded")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := New()
	sub := h.Subscribe()
	h.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Error("expected the channel closed after unsubscribe")
	}

	// Publishing after detach must not panic or block.
	h.Publish(&model.Timeline{Title: "x"})
}

func TestHubClose(t *testing.T) {
	h := New()
	sub := h.Subscribe()

	h.Close()

	if _, ok := <-sub; ok {
		t.Error("expected subscriber channel closed")
	}
	if got := h.Subscribe(); got == nil {
		t.Fatal("expected a closed channel, got nil")
	} else if _, ok := <-got; ok {
		t.Error("expected subscriptions after close to be closed immediately")
	}
	h.Publish(&model.Timeline{Title: "late"})
	if h.Latest() != nil {
		t.Error("expected publish after close to be ignored")
	}
}
