package watch

import (
	"testing"

	"github.com/inventgo/inventapp/models"
)

func TestSubscribe_ReceivesBroadcast(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)
	defer sub.Cancel()

	hub.Broadcast(1, []models.Item{{Name: "Widget"}})

	snapshot := <-sub.C
	if len(snapshot) != 1 || snapshot[0].Name != "Widget" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestBroadcast_ScopedToOwner(t *testing.T) {
	hub := NewHub()
	mine := hub.Subscribe(1)
	theirs := hub.Subscribe(2)
	defer mine.Cancel()
	defer theirs.Cancel()

	// another owner's mutation must not reach this owner's stream
	hub.Broadcast(2, []models.Item{{OwnerID: 2, Name: "Other"}})

	select {
	case snapshot := <-mine.C:
		t.Fatalf("owner 1 received owner 2's snapshot: %+v", snapshot)
	default:
	}

	snapshot := <-theirs.C
	if len(snapshot) != 1 || snapshot[0].OwnerID != 2 {
		t.Fatalf("owner 2 missed own snapshot: %+v", snapshot)
	}
}

func TestBroadcast_SlowSubscriberSeesLatest(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)
	defer sub.Cancel()

	hub.Broadcast(1, []models.Item{{Name: "old"}})
	hub.Broadcast(1, []models.Item{{Name: "new"}})

	snapshot := <-sub.C
	if snapshot[0].Name != "new" {
		t.Fatalf("expected latest snapshot, got %q", snapshot[0].Name)
	}

	select {
	case extra, ok := <-sub.C:
		if ok {
			t.Fatalf("unexpected extra snapshot: %+v", extra)
		}
	default:
	}
}

func TestCancel_Idempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(1)

	sub.Cancel()
	sub.Cancel()

	if _, ok := <-sub.C; ok {
		t.Fatal("channel still open after cancel")
	}

	// a broadcast after cancel must not panic or deliver
	hub.Broadcast(1, []models.Item{{Name: "Widget"}})
}

func TestBroadcast_MultipleSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(1)
	b := hub.Subscribe(1)
	defer a.Cancel()

	b.Cancel()
	hub.Broadcast(1, []models.Item{{Name: "Widget"}})

	if snapshot := <-a.C; len(snapshot) != 1 {
		t.Fatalf("live subscriber missed broadcast: %+v", snapshot)
	}
	if _, ok := <-b.C; ok {
		t.Fatal("cancelled subscriber received broadcast")
	}
}
