package eventbus

import (
	"sync"
	"testing"
	"time"

	"videoingest/internal/domain"
	"videoingest/internal/domain/ports"
)

func TestTenantIsolation(t *testing.T) {
	b := New(4)
	subA := b.Subscribe("tenantA")
	defer subA.Unsubscribe()
	subB := b.Subscribe("tenantB")
	defer subB.Unsubscribe()

	b.Publish("tenantA", ports.Event{Type: ports.EventVideoUploaded, VideoID: "v1"})

	select {
	case e := <-subA.Events():
		if e.VideoID != "v1" {
			t.Fatalf("subA got %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("subA did not receive its tenant's event")
	}

	select {
	case e := <-subB.Events():
		t.Fatalf("subB received cross-tenant event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPerVideoOrdering(t *testing.T) {
	b := New(8)
	sub := b.Subscribe("t")
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		b.Publish("t", ports.Event{Type: ports.EventVideoProgressUpdate, VideoID: domain.VideoID("v1"), Payload: i})
	}

	for i := 0; i < 5; i++ {
		select {
		case e := <-sub.Events():
			if e.Payload != i {
				t.Fatalf("event %d out of order: got payload %v", i, e.Payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestDropOldestOnFullQueue(t *testing.T) {
	b := New(2)
	sub := b.Subscribe("t")
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		b.Publish("t", ports.Event{Type: ports.EventVideoProgressUpdate, Payload: i})
	}

	// With a buffer of 2 and drop-oldest, survivors must be the most
	// recent events in published order.
	var got []int
	for len(got) < 2 {
		select {
		case e := <-sub.Events():
			got = append(got, e.Payload.(int))
		case <-time.After(time.Second):
			t.Fatalf("timed out draining, got %v so far", got)
		}
	}
	if got[0] >= got[1] {
		t.Fatalf("survivors not in publish order: %v", got)
	}
	if got[len(got)-1] != 4 {
		t.Fatalf("newest event was dropped: survivors = %v", got)
	}
}

func TestDropOldestNeverDropsNewestUnderConcurrentPublishers(t *testing.T) {
	b := New(4)
	sub := b.Subscribe("t")
	defer sub.Unsubscribe()

	const publishers = 8
	const perPublisher = 50
	var wg sync.WaitGroup
	wg.Add(publishers)
	for p := 0; p < publishers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPublisher; i++ {
				b.Publish("t", ports.Event{Type: ports.EventVideoProgressUpdate, Payload: p*perPublisher + i})
			}
		}(p)
	}
	wg.Wait()

	// After the concurrent burst has refilled the buffer, one more
	// Publish is the newest event overall: it must be the last one
	// drained, not dropped in favour of older events.
	const newest = -1
	b.Publish("t", ports.Event{Type: ports.EventVideoProgressUpdate, Payload: newest})

	drained := 0
	var last interface{}
	for {
		select {
		case ev := <-sub.Events():
			drained++
			last = ev.Payload
		case <-time.After(100 * time.Millisecond):
			if drained == 0 {
				t.Fatal("no events delivered")
			}
			if drained > 4 {
				t.Fatalf("buffer size 4 exceeded: drained %d", drained)
			}
			if last != newest {
				t.Fatalf("newest event dropped: last drained payload %v", last)
			}
			return
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(4)
	sub := b.Subscribe("t")
	sub.Unsubscribe()

	// Publishing after unsubscribe must not panic or block.
	b.Publish("t", ports.Event{Type: ports.EventVideoUploaded})
}
