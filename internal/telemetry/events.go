package telemetry

import (
	"sync"
	"time"
)

// EventKind is one of the telemetry events the core emits, per the
// external-interfaces contract.
type EventKind string

const (
	SecurityClassified  EventKind = "security.classified"
	SecurityDecision    EventKind = "security.decision"
	ApprovalRequested   EventKind = "approval.requested"
	ApprovalResolved    EventKind = "approval.resolved"
	RobotStateTransition EventKind = "robot.state_transition"
	RobotMotionBlocked  EventKind = "robot.motion_blocked"
	RobotEstopEngaged   EventKind = "robot.estop_engaged"
	RobotEstopReleased  EventKind = "robot.estop_released"
	AuditFlush          EventKind = "audit.flush"
)

// Event is one emitted telemetry record. Payload carries the
// event-specific fields named in spec.md §6 (command/level/reasons,
// etc.); transport of Events beyond this process is external.
type Event struct {
	Kind      EventKind
	Payload   map[string]any
	Timestamp time.Time
}

// Handler reacts to an Event.
type Handler func(Event)

// EventBus dispatches emitted Events to kind-specific subscribers first,
// then to subscribers registered for every kind — the same
// specific-then-global order the teacher's hook dispatcher uses.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
	global   []Handler
}

// NewEventBus returns an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[EventKind][]Handler)}
}

// On registers h for events of kind.
func (b *EventBus) On(kind EventKind, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], h)
}

// OnAny registers h for every event kind.
func (b *EventBus) OnAny(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.global = append(b.global, h)
}

// Emit dispatches an event synchronously: kind-specific handlers first,
// then global ones, in registration order.
func (b *EventBus) Emit(kind EventKind, payload map[string]any) {
	e := Event{Kind: kind, Payload: payload, Timestamp: time.Now()}

	b.mu.RLock()
	specific := append([]Handler(nil), b.handlers[kind]...)
	global := append([]Handler(nil), b.global...)
	b.mu.RUnlock()

	for _, h := range specific {
		h(e)
	}
	for _, h := range global {
		h(e)
	}
}

// EmitAsync dispatches Emit on its own goroutine, for callers on a hot
// path that must not block on a slow telemetry subscriber. The Security
// Controller emits synchronously through Emit.
func (b *EventBus) EmitAsync(kind EventKind, payload map[string]any) {
	go b.Emit(kind, payload)
}
