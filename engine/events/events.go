// Package events holds the append-only game event log. The rules never read
// it back; it exists for presentation layers, persistence and replay.
package events

import (
	"github.com/nathoo/wolfcore/types"
)

// Clock reports the round and phase an event is stamped with.
type Clock func() (int, types.Phase)

// Handler receives every event as it is appended.
type Handler func(types.Event)

// Log is the ordered event record of one game.
type Log struct {
	clock    Clock
	events   []types.Event
	handlers []Handler
}

// NewLog returns an empty log stamping events with clock.
func NewLog(clock Clock) *Log {
	return &Log{clock: clock}
}

// Emit appends an event and notifies subscribers. A nil visibleTo makes the
// event public.
func (l *Log) Emit(typ types.EventType, msg string, data map[string]any, visibleTo ...string) types.Event {
	round, phase := 0, types.PhaseSetup
	if l.clock != nil {
		round, phase = l.clock()
	}
	e := types.Event{
		Seq:     len(l.events) + 1,
		Type:    typ,
		Round:   round,
		Phase:   phase,
		Message: msg,
		Data:    data,
	}
	if len(visibleTo) > 0 {
		e.VisibleTo = append([]string(nil), visibleTo...)
	}
	l.events = append(l.events, e)
	for _, h := range l.handlers {
		h(e)
	}
	return e
}

// Subscribe registers h for every future event.
func (l *Log) Subscribe(h Handler) {
	l.handlers = append(l.handlers, h)
}

// All returns a copy of every event in order.
func (l *Log) All() []types.Event {
	out := make([]types.Event, len(l.events))
	copy(out, l.events)
	return out
}

// Since returns the events appended after seq.
func (l *Log) Since(seq int) []types.Event {
	if seq >= len(l.events) {
		return nil
	}
	if seq < 0 {
		seq = 0
	}
	out := make([]types.Event, len(l.events)-seq)
	copy(out, l.events[seq:])
	return out
}

// Len returns the number of events.
func (l *Log) Len() int { return len(l.events) }

// VisibleTo returns the events playerID may see: public ones and those
// addressed to it.
func (l *Log) VisibleTo(playerID string) []types.Event {
	var out []types.Event
	for _, e := range l.events {
		if Visible(e, playerID) {
			out = append(out, e)
		}
	}
	return out
}

// Visible reports whether playerID may see e.
func Visible(e types.Event, playerID string) bool {
	if e.VisibleTo == nil {
		return true
	}
	for _, id := range e.VisibleTo {
		if id == playerID {
			return true
		}
	}
	return false
}

// Restore replaces the log content, e.g. after loading a save. Subscribers
// are not notified.
func (l *Log) Restore(evs []types.Event) {
	l.events = append([]types.Event(nil), evs...)
}
