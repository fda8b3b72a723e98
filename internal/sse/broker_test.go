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

	b.Publish(Event{Type: TypeScrollTop, Data: map[string]bool{"smooth": true}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: viewport.scroll_top") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"smooth":true`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChange_FacetThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange("gallery.appended", map[string]int{"count": 6})
	b.PublishChange("image.tagged", map[string]string{"tag": "Special"})

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	facetCount := 0
	changeCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, TypeFacetsUpdated) {
				facetCount++
			} else {
				changeCount++
			}
		default:
			break loop
		}
	}

	if changeCount != 2 {
		t.Errorf("change events = %d, want 2", changeCount)
	}
	if facetCount != 1 {
		t.Errorf("facet events = %d, want 1 (throttled)", facetCount)
	}
}

func TestPublishChange_TrailingFacetRefresh(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishChange("gallery.appended", map[string]int{"count": 6})
	b.PublishChange("image.tagged", map[string]string{"tag": "Special"})
	b.PublishChange("image.tagged", map[string]string{"tag": "Other"})

	facets := 0
	deadline := time.After(400 * time.Millisecond)
loop:
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), TypeFacetsUpdated) {
				facets++
			}
		case <-deadline:
			break loop
		}
	}

	if facets != 2 {
		t.Errorf("facet events = %d, want 2 (leading + one trailing)", facets)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/x/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishChange("gallery.filtered", map[string]string{"tag": "AI"})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: gallery.filtered") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: TypeScrollTop, Data: map[string]bool{"smooth": false}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TypeScrollTop, Data: nil})
	b.PublishChange("gallery.appended", nil)
	b.Close()
}

func TestEncode(t *testing.T) {
	raw, err := Encode(Event{Type: "image.tagged", Data: map[string]string{"image_id": "1", "tag": "X"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "event: image.tagged\ndata: {\"image_id\":\"1\",\"tag\":\"X\"}\n\n"
	if string(raw) != want {
		t.Errorf("Encode = %q, want %q", raw, want)
	}
	if _, err := Encode(Event{Type: "bad", Data: func() {}}); err == nil {
		t.Error("expected error for unencodable data")
	}
}
