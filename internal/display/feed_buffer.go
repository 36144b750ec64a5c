package display

import (
	"sync"
	"time"

	"github.com/vndevents/checkin-kiosk/internal/backend"
)

// FeedEvent is one entry on the welcome display's live feed.
type FeedEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"` // new_checkin or user_checkout
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	Department string    `json:"department,omitempty"`
	SeatNumber int       `json:"seat_number,omitempty"`
	At         time.Time `json:"at"`
}

// FeedBuffer is a thread-safe ring of recent check-in events plus the
// latest guest counters.
type FeedBuffer struct {
	mu      sync.RWMutex
	entries []FeedEvent
	cap     int

	total        int
	checkinTotal int
}

// NewFeedBuffer creates a feed buffer with the given capacity.
func NewFeedBuffer(capacity int) *FeedBuffer {
	if capacity <= 0 {
		capacity = 50
	}
	return &FeedBuffer{
		entries: make([]FeedEvent, 0, capacity),
		cap:     capacity,
	}
}

// Add appends an event, dropping the oldest when full.
func (fb *FeedBuffer) Add(ev FeedEvent) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if len(fb.entries) >= fb.cap {
		copy(fb.entries, fb.entries[1:])
		fb.entries[len(fb.entries)-1] = ev
	} else {
		fb.entries = append(fb.entries, ev)
	}
}

// Entries returns all events, newest first.
func (fb *FeedBuffer) Entries() []FeedEvent {
	fb.mu.RLock()
	defer fb.mu.RUnlock()

	result := make([]FeedEvent, len(fb.entries))
	for i, j := 0, len(fb.entries)-1; j >= 0; i, j = i+1, j-1 {
		result[i] = fb.entries[j]
	}
	return result
}

// SetCounters stores the latest totals from the backend.
func (fb *FeedBuffer) SetCounters(total, checkinTotal int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.total = total
	fb.checkinTotal = checkinTotal
}

// Counters returns the stored totals.
func (fb *FeedBuffer) Counters() (total, checkinTotal int) {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.total, fb.checkinTotal
}

// EventFromUser builds a feed event from a backend user record. Caller is
// responsible for sanitizing the fields first.
func EventFromUser(id, eventType string, u *backend.User) FeedEvent {
	return FeedEvent{
		ID:         id,
		Type:       eventType,
		Name:       u.Name,
		Title:      u.Title,
		Department: u.Department,
		SeatNumber: u.SeatNumber,
		At:         time.Now(),
	}
}
