package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisFanoutDeliversToPeer(t *testing.T) {
	s := miniredis.RunT(t)

	busA := NewBus()
	busB := NewBus()

	fanoutA, err := NewRedisFanout("redis://"+s.Addr(), busA)
	if err != nil {
		t.Fatalf("fanout A: %v", err)
	}
	defer fanoutA.Close()

	fanoutB, err := NewRedisFanout("redis://"+s.Addr(), busB)
	if err != nil {
		t.Fatalf("fanout B: %v", err)
	}
	defer fanoutB.Close()

	var mu sync.Mutex
	var received []Event
	busB.Subscribe(func(_ context.Context, event Event) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
	})

	event := Event{
		ID:              "evt_test",
		Kind:            ApplicationAccepted,
		ProjectTitle:    "Landing Page",
		FreelancerEmail: "dev@example.com",
		OccurredAt:      time.Now(),
	}
	if err := fanoutA.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		count := len(received)
		mu.Unlock()
		if count > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("peer never received the event")
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if received[0].Kind != ApplicationAccepted || received[0].ProjectTitle != "Landing Page" {
		t.Errorf("unexpected event: %+v", received[0])
	}
}

func TestRedisFanoutSkipsOwnEvents(t *testing.T) {
	s := miniredis.RunT(t)

	bus := NewBus()
	fanout, err := NewRedisFanout("redis://"+s.Addr(), bus)
	if err != nil {
		t.Fatalf("fanout: %v", err)
	}
	defer fanout.Close()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(_ context.Context, _ Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	if err := fanout.Publish(context.Background(), Event{Kind: RatingSubmitted}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Give the receive loop a chance to (wrongly) echo it back.
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("fanout echoed %d of its own events into the local bus", count)
	}
}

func TestBusFanOutOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(func(_ context.Context, _ Event) { order = append(order, 1) })
	bus.Subscribe(func(_ context.Context, _ Event) { order = append(order, 2) })

	bus.Publish(context.Background(), Event{Kind: ApplicationSubmitted})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected delivery in subscription order, got %v", order)
	}
}
