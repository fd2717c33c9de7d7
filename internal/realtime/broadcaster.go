package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gastosapp/gastos-backend/pkg/logger"
)

const clientBuffer = 16

// Event is the envelope delivered to every connected client.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	TS    int64  `json:"ts"`
}

type subscriber struct {
	ch     chan Event
	once   sync.Once
	parent *Broadcaster
}

// Broadcaster fans events out to connected stream clients. It is handed to
// services through dependency injection; there is no package-level instance.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
	logg *logger.Logger
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster(logg *logger.Logger) *Broadcaster {
	return &Broadcaster{
		subs: map[*subscriber]struct{}{},
		logg: logg,
	}
}

// Register adds a client and returns its event channel plus an unsubscribe
// function. Unsubscribe is safe to call more than once and always closes the
// channel so range loops terminate.
func (b *Broadcaster) Register() (<-chan Event, func()) {
	sub := &subscriber{
		ch:     make(chan Event, clientBuffer),
		parent: b,
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	return sub.ch, sub.unsubscribe
}

func (s *subscriber) unsubscribe() {
	s.once.Do(func() {
		s.parent.mu.Lock()
		delete(s.parent.subs, s)
		s.parent.mu.Unlock()
		close(s.ch)
	})
}

// Broadcast delivers the event to every registered client. Slow clients have
// the event dropped rather than blocking the caller, and a failure delivering
// to one client never prevents delivery to the rest.
func (b *Broadcaster) Broadcast(event string, data any) {
	envelope := Event{
		Event: event,
		Data:  data,
		TS:    time.Now().UnixMilli(),
	}

	b.mu.Lock()
	subs := make([]*subscriber, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		b.deliver(sub, envelope)
	}
}

func (b *Broadcaster) deliver(sub *subscriber, envelope Event) {
	defer func() {
		// Send on a channel an unsubscribe just closed panics; drop the
		// client instead of taking the broadcast down.
		if r := recover(); r != nil {
			if b.logg != nil {
				ctx := b.logg.WithField(context.Background(), "panic", fmt.Sprint(r))
				b.logg.Warn(ctx, "dropping realtime client after failed delivery")
			}
			sub.unsubscribe()
		}
	}()

	select {
	case sub.ch <- envelope:
	default:
		// Client buffer full. Drop the event for this client only.
	}
}

// ClientCount reports how many clients are currently registered.
func (b *Broadcaster) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
