package sse

import (
	"strings"
	"testing"
	"time"
)

func TestBroker_PublishReachesSubscribers(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("clients = %d", b.ClientCount())
	}

	b.PublishObjectEvent("created", "obj-1")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: object.created") || !strings.Contains(s, `"id":"obj-1"`) {
			t.Errorf("message = %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
}

func TestBroker_GraphEventThrottled(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishObjectEvent("updated", "a")
	b.PublishObjectEvent("updated", "b")

	deadline := time.After(300 * time.Millisecond)
	var events []string
drain:
	for {
		select {
		case msg := <-ch:
			events = append(events, string(msg))
		case <-deadline:
			break drain
		}
	}

	graphEvents := 0
	for _, e := range events {
		if strings.Contains(e, "graph.updated") {
			graphEvents++
		}
	}
	if graphEvents != 1 {
		t.Errorf("graph.updated events = %d, want 1 (throttled)", graphEvents)
	}
}

func TestBroker_UnknownKindIgnored(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishObjectEvent("renamed", "x")

	select {
	case msg := <-ch:
		t.Errorf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_CloseStopsDelivery(t *testing.T) {
	b := NewBroker(time.Second)
	ch := b.Subscribe()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("channel not closed")
	}
	// Publishing after close must not panic.
	b.PublishObjectEvent("created", "late")
	if b.ClientCount() != 0 {
		t.Errorf("clients = %d", b.ClientCount())
	}
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel not closed after unsubscribe")
	}
	if b.ClientCount() != 0 {
		t.Errorf("clients = %d", b.ClientCount())
	}
}
