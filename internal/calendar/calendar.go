// Package calendar owns the live, append-only collection of workout events
// and renders it as an ICS subscription document.
package calendar

import (
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"

	"example.com/workoutcal/internal/domain"
)

// Calendar is a mutex-synchronized append-only event collection shared by
// the ingestion and feed handlers. Feed reads never block ingestion beyond
// the copy under the read lock.
type Calendar struct {
	name string

	mu     sync.RWMutex
	events []domain.Event
}

// New constructs an empty Calendar with the given display name.
func New(name string) *Calendar {
	return &Calendar{name: name}
}

// Add appends an event. Events are never removed or mutated.
func (c *Calendar) Add(ev domain.Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

// Len reports the number of events currently held.
func (c *Calendar) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Events returns a snapshot copy of the collection.
func (c *Calendar) Events() []domain.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out
}

// ICS renders the collection as a VCALENDAR of all-day events.
func (c *Calendar) ICS() string {
	events := c.Events()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//workoutcal//EN")
	cal.SetXWRCalName(c.name)

	stamp := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.UID)
		ve.SetSummary(ev.Title)
		ve.SetDescription(ev.Description)
		ve.SetAllDayStartAt(ev.Day)
		ve.SetAllDayEndAt(ev.Day.AddDate(0, 0, 1))
		ve.SetDtStampTime(stamp)
	}
	return cal.Serialize()
}
