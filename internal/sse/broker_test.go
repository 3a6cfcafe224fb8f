package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/models"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(time.Minute)
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
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeAdded, Data: map[string]string{"display": "a"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: appointment.added") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"display":"a"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishChange_EventTypesAndIDs(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	a := models.Appointment{
		Title: "Dentist",
		Date:  models.Date{Year: 2024, Month: time.May, Day: 1},
		Start: models.Clock{Hour: 9},
		End:   models.Clock{Hour: 9, Minute: 30},
	}
	b.PublishChange(appointments.Change{Kind: appointments.ChangeAdded, Index: 0, Appointment: a, Total: 1})
	b.PublishChange(appointments.Change{Kind: appointments.ChangeRemoved, Index: 0, Appointment: a, Total: 0})
	b.PublishChange(appointments.Change{Kind: appointments.ChangeReloaded, Total: 3})

	var msgs []string
	for i := 0; i < 3; i++ {
		select {
		case msg := <-ch:
			msgs = append(msgs, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for message %d", i)
		}
	}

	if !strings.HasPrefix(msgs[0], "id: 1\nevent: appointment.added\n") {
		t.Errorf("msg[0] = %q", msgs[0])
	}
	if !strings.Contains(msgs[0], `"index":0`) || !strings.Contains(msgs[0], `"display":"Dentist 2024-05-01 09:00 - 09:30"`) {
		t.Errorf("msg[0] payload = %q", msgs[0])
	}
	if !strings.HasPrefix(msgs[1], "id: 2\nevent: appointment.removed\n") {
		t.Errorf("msg[1] = %q", msgs[1])
	}
	if !strings.HasPrefix(msgs[2], "id: 3\nevent: appointments.reloaded\n") || !strings.Contains(msgs[2], `"total":3`) {
		t.Errorf("msg[2] = %q", msgs[2])
	}
	if strings.Contains(msgs[2], "index") {
		t.Errorf("reload event should not carry an index: %q", msgs[2])
	}
}

func TestHeartbeat(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	select {
	case msg := <-ch:
		if string(msg) != ": keepalive\n\n" {
			t.Errorf("heartbeat = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
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

	b.Publish(Event{Type: TypeReloaded, Data: ChangeData{Total: 2}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: appointments.reloaded") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(time.Minute)
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
	b.Publish(Event{Type: TypeReloaded, Data: ChangeData{}})
	b.PublishChange(appointments.Change{Kind: appointments.ChangeReloaded})
}
