package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "item.created", Data: map[string]string{"id": "abc"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: item.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"abc"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishItemEvent_ProgressThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger progress.updated.
	b.PublishItemEvent("reviewed", "a")
	// Second event immediately should NOT trigger another progress.updated.
	b.PublishItemEvent("updated", "b")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	progressCount := 0
	itemCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "progress.updated") {
				progressCount++
			} else {
				itemCount++
			}
		default:
			break loop
		}
	}

	if itemCount != 2 {
		t.Errorf("item events = %d, want 2", itemCount)
	}
	if progressCount != 1 {
		t.Errorf("progress events = %d, want 1 (throttled)", progressCount)
	}
}

func TestPublishItemEventUnknownKindDropped(t *testing.T) {
	b := NewBroker(time.Hour) // suppress progress events entirely
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishItemEvent("reviewed", "a")

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: item.reviewed") {
			t.Errorf("unexpected message %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}

	b.PublishItemEvent("exploded", "a")
	time.Sleep(50 * time.Millisecond)
	select {
	case msg := <-ch:
		t.Errorf("unknown kind should broadcast nothing, got %q", msg)
	default:
	}
}

func TestPublishAchievement(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishAchievement("mastered_1")

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: achievement.unlocked") || !strings.Contains(s, `"id":"mastered_1"`) {
			t.Errorf("unexpected message %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestServeHTTPStreamsEvents(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(rec, req)
		close(done)
	}()

	// Wait for the subscription to land, then publish.
	deadline := time.Now().Add(time.Second)
	for b.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	b.Publish(Event{Type: "item.deleted", Data: map[string]string{"id": "x"}})
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "event: item.deleted") {
		t.Errorf("stream body = %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}

func TestCloseIdempotent(t *testing.T) {
	b := NewBroker(time.Second)
	b.Close()
	b.Close()

	// Operations after close are safe no-ops.
	b.Publish(Event{Type: "item.created"})
	b.PublishItemEvent("created", "x")
	if b.ClientCount() != 0 {
		t.Error("closed broker should report 0 clients")
	}
	ch := b.Subscribe()
	if _, ok := <-ch; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}
