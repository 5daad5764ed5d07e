// Package watch delivers ordered inventory snapshots to live subscribers.
// Subscriptions are scoped to one owner: a mutation broadcasts a fresh
// snapshot to that owner's subscribers only. A subscriber that falls behind
// misses intermediate snapshots, never sees them out of order.
package watch

import (
	"sync"

	"github.com/inventgo/inventapp/models"
)

type Hub struct {
	mu   sync.Mutex
	subs map[uint]map[*Subscription]struct{}
}

// Subscription is a cancellable handle on one owner's snapshot stream.
// Cancel is idempotent and safe to call concurrently with Broadcast.
type Subscription struct {
	C chan []models.Item

	hub     *Hub
	ownerID uint
	once    sync.Once
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[*Subscription]struct{})}
}

func (h *Hub) Subscribe(ownerID uint) *Subscription {
	sub := &Subscription{
		C:       make(chan []models.Item, 1),
		hub:     h,
		ownerID: ownerID,
	}
	h.mu.Lock()
	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[*Subscription]struct{})
	}
	h.subs[ownerID][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Broadcast delivers a snapshot to the owner's subscribers, replacing any
// undelivered one so a slow subscriber always gets the latest state next.
func (h *Hub) Broadcast(ownerID uint, snapshot []models.Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[ownerID] {
		select {
		case sub.C <- snapshot:
		default:
			select {
			case <-sub.C:
			default:
			}
			sub.C <- snapshot
		}
	}
}

func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs[s.ownerID], s)
		if len(s.hub.subs[s.ownerID]) == 0 {
			delete(s.hub.subs, s.ownerID)
		}
		s.hub.mu.Unlock()
		close(s.C)
	})
}
