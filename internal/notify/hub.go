package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind classifies a progress event.
type EventKind string

const (
	KindStatus   EventKind = "status"
	KindProgress EventKind = "progress"
	KindSuccess  EventKind = "success"
	KindWarning  EventKind = "warning"
	KindError    EventKind = "error"
)

// Event is one progress notification delivered to a user's subscribers.
type Event struct {
	Sequence  uint64    `json:"seq"`
	Timestamp time.Time `json:"ts"`
	JobID     string    `json:"job_id"`
	Kind      EventKind `json:"kind"`
	Status    string    `json:"status,omitempty"`
	Percent   int       `json:"percent,omitempty"`
	VideoID   string    `json:"video_id,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// ErrUnknownSubscription indicates a fetch or cancel against a subscription
// id that does not exist or was already cancelled.
var ErrUnknownSubscription = errors.New("unknown subscription")

type subscription struct {
	id     string
	userID int64
	queue  []Event
	closed bool
}

// Hub fans progress events out to per-user subscriptions. Each subscription
// owns an ordered queue; events published before a subscription exists are
// never delivered to it.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	capacity int
	nextSeq  uint64
	subs     map[string]*subscription
	byUser   map[int64]map[string]*subscription
}

// NewHub constructs a hub with the given per-subscription queue capacity.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 256
	}
	h := &Hub{
		capacity: capacity,
		subs:     make(map[string]*subscription),
		byUser:   make(map[int64]map[string]*subscription),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Subscribe registers a new subscription for the user and returns its id.
func (h *Hub) Subscribe(userID int64) string {
	sub := &subscription{id: uuid.NewString(), userID: userID}

	h.mu.Lock()
	h.subs[sub.id] = sub
	userSubs := h.byUser[userID]
	if userSubs == nil {
		userSubs = make(map[string]*subscription)
		h.byUser[userID] = userSubs
	}
	userSubs[sub.id] = sub
	h.mu.Unlock()

	return sub.id
}

// Unsubscribe removes a subscription and wakes any blocked fetch on it.
// It reports whether the subscription existed.
func (h *Hub) Unsubscribe(subID string) bool {
	h.mu.Lock()
	sub, ok := h.subs[subID]
	if ok {
		sub.closed = true
		delete(h.subs, subID)
		if userSubs := h.byUser[sub.userID]; userSubs != nil {
			delete(userSubs, subID)
			if len(userSubs) == 0 {
				delete(h.byUser, sub.userID)
			}
		}
	}
	h.cond.Broadcast()
	h.mu.Unlock()
	return ok
}

// Publish delivers an event to every live subscription of the user. Queues
// are bounded; the oldest event is dropped when a queue is full.
func (h *Hub) Publish(userID int64, evt Event) {
	h.mu.Lock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	for _, sub := range h.byUser[userID] {
		if len(sub.queue) == h.capacity {
			copy(sub.queue, sub.queue[1:])
			sub.queue = sub.queue[:h.capacity-1]
		}
		sub.queue = append(sub.queue, evt)
	}
	h.cond.Broadcast()
	h.mu.Unlock()
}

// Fetch drains up to limit queued events for a subscription. When wait is
// true and the queue is empty, Fetch blocks until an event arrives, the
// context ends, or the subscription is cancelled.
func (h *Hub) Fetch(ctx context.Context, subID string, limit int, wait bool) ([]Event, error) {
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				h.cond.Broadcast()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		sub, ok := h.subs[subID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSubscription, subID)
		}
		if len(sub.queue) > 0 {
			n := len(sub.queue)
			if n > limit {
				n = limit
			}
			out := make([]Event, n)
			copy(out, sub.queue[:n])
			remaining := copy(sub.queue, sub.queue[n:])
			sub.queue = sub.queue[:remaining]
			// Dequeued events are delivered even when the context ended
			// while they were queued; dropping them here would lose them
			// for good.
			return out, nil
		}
		if !wait {
			return nil, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, err
		}
		h.cond.Wait()
		if err := contextError(ctx); err != nil {
			return nil, err
		}
	}
}

// SubscriberCount reports the number of live subscriptions for a user.
func (h *Hub) SubscriberCount(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser[userID])
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
