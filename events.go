package titanium

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// EventType names the execution boundaries an [EventBus] reports, per spec
// §4.8.
type EventType string

const (
	EventTaskStarted   EventType = "task_started"
	EventTaskCompleted EventType = "task_completed"
	EventTaskFailed    EventType = "task_failed"
	EventCacheHit      EventType = "cache_hit"
	EventCacheMiss     EventType = "cache_miss"
)

// Event is one observation delivered to subscribers. RunID correlates every
// event from a single [Engine.Run] call, minted fresh per run.
type Event struct {
	Type      EventType
	RunID     uuid.UUID
	TaskName  string
	Signature uint64
	Err       error
}

// EventBus delivers events to subscribers synchronously, on the executing
// goroutine, in subscription order. A subscriber that panics is recovered
// and logged rather than propagated: one observer's bug must never abort
// the run it's merely watching (spec §4.8, §7).
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]func(Event)
	logger      *slog.Logger
}

// NewEventBus creates an EventBus with no subscribers.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[EventType][]func(Event))}
}

// Subscribe registers fn to be called for every future event of type typ.
func (b *EventBus) Subscribe(typ EventType, fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[typ] = append(b.subscribers[typ], fn)
}

func (b *EventBus) setLogger(l *slog.Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logger = l
}

func (b *EventBus) publish(ev Event) {
	b.mu.RLock()
	subs := append([]func(Event){}, b.subscribers[ev.Type]...)
	logger := b.logger
	b.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil && logger != nil {
					logger.Warn("event subscriber panicked", "panic", r, "event_type", ev.Type)
				}
			}()
			fn(ev)
		}()
	}
}
