package realtime

import (
	"testing"
	"time"

	"github.com/Kerhoff/croowa/pkg/logger"
	"github.com/google/uuid"
)

func received(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

func TestPublishReachesOnlyGroupSubscribers(t *testing.T) {
	hub := NewHub()
	groupA, groupB := uuid.New(), uuid.New()

	a, cancelA := hub.Subscribe(groupA)
	defer cancelA()
	b, cancelB := hub.Subscribe(groupB)
	defer cancelB()

	hub.Publish(groupA)

	if !received(a) {
		t.Error("subscriber of group A was not signalled")
	}
	if received(b) {
		t.Error("subscriber of group B was signalled")
	}
}

func TestPublishCoalesces(t *testing.T) {
	hub := NewHub()
	group := uuid.New()
	ch, cancel := hub.Subscribe(group)
	defer cancel()

	for i := 0; i < 5; i++ {
		hub.Publish(group)
	}

	if !received(ch) {
		t.Fatal("no signal after publishing")
	}
	if received(ch) {
		t.Error("signals were not coalesced")
	}
}

func TestCancelReleasesSubscription(t *testing.T) {
	hub := NewHub()
	group := uuid.New()

	_, cancel := hub.Subscribe(group)
	_, cancelOther := hub.Subscribe(group)
	if got := hub.Subscribers(group); got != 2 {
		t.Fatalf("Subscribers = %d, want 2", got)
	}

	cancel()
	cancel()
	if got := hub.Subscribers(group); got != 1 {
		t.Errorf("Subscribers after cancel = %d, want 1", got)
	}
	cancelOther()
	if got := hub.Subscribers(group); got != 0 {
		t.Errorf("Subscribers after both cancelled = %d, want 0", got)
	}
}

func TestDispatch(t *testing.T) {
	hub := NewHub()
	group := uuid.New()
	ch, cancel := hub.Subscribe(group)
	defer cancel()

	Dispatch(hub, "not-a-uuid", logger.Discard())
	if received(ch) {
		t.Error("malformed payload produced a signal")
	}

	Dispatch(hub, group.String(), logger.Discard())
	if !received(ch) {
		t.Error("valid payload produced no signal")
	}
}
