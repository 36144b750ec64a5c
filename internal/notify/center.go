package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notice for rendering.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindConfirm Kind = "confirm"
)

// Notice is one toast or dialog shown on the kiosk display.
type Notice struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Blocking  bool      `json:"blocking"`
	CreatedAt time.Time `json:"created_at"`
}

// Center presents toasts and dialogs. Toasts are fire-and-forget and kept in
// a capped ring for the display to render. Dialogs block the caller until the
// display acknowledges them (or the auto-dismiss timeout fires), which is how
// the scan pipeline waits for a result dialog to be dismissed.
type Center struct {
	mu      sync.Mutex
	toasts  []Notice
	cap     int
	pending []Notice
	waiters map[string]chan bool
	dismiss time.Duration
}

// NewCenter creates a notice center. capacity bounds the toast ring;
// autoDismiss bounds how long a dialog can sit unacknowledged.
func NewCenter(capacity int, autoDismiss time.Duration) *Center {
	if capacity <= 0 {
		capacity = 20
	}
	if autoDismiss <= 0 {
		autoDismiss = 15 * time.Second
	}
	return &Center{
		cap:     capacity,
		waiters: make(map[string]chan bool),
		dismiss: autoDismiss,
	}
}

// Toast records a fire-and-forget notice.
func (c *Center) Toast(kind Kind, title, message string) Notice {
	n := Notice{
		ID:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.toasts) >= c.cap {
		copy(c.toasts, c.toasts[1:])
		c.toasts[len(c.toasts)-1] = n
	} else {
		c.toasts = append(c.toasts, n)
	}
	return n
}

// Dialog blocks until the notice is acknowledged or the auto-dismiss timeout
// elapses. For confirm dialogs the return value is the user's choice; info
// dialogs always report true.
func (c *Center) Dialog(kind Kind, title, message string) bool {
	n := Notice{
		ID:        uuid.New().String(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Blocking:  true,
		CreatedAt: time.Now(),
	}
	ch := make(chan bool, 1)

	c.mu.Lock()
	c.pending = append(c.pending, n)
	c.waiters[n.ID] = ch
	c.mu.Unlock()

	select {
	case confirmed := <-ch:
		return confirmed
	case <-time.After(c.dismiss):
		c.remove(n.ID)
		// An unattended kiosk must not stall forever on a dialog.
		return kind != KindConfirm
	}
}

// Flash records a toast without returning it.
func (c *Center) Flash(kind Kind, title, message string) {
	c.Toast(kind, title, message)
}

// Confirm shows a blocking confirm dialog and reports the choice.
func (c *Center) Confirm(title, message string) bool {
	return c.Dialog(KindConfirm, title, message)
}

// Ack dismisses a pending dialog. Returns false if no such dialog exists.
func (c *Center) Ack(id string, confirmed bool) bool {
	c.mu.Lock()
	ch, ok := c.waiters[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.remove(id)
	ch <- confirmed
	return true
}

// Pending returns dialogs awaiting acknowledgement, oldest first.
func (c *Center) Pending() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.pending))
	copy(out, c.pending)
	return out
}

// Toasts returns recorded toasts, newest first.
func (c *Center) Toasts() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notice, len(c.toasts))
	for i, j := 0, len(c.toasts)-1; j >= 0; i, j = i+1, j-1 {
		out[i] = c.toasts[j]
	}
	return out
}

func (c *Center) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.waiters, id)
	for i, n := range c.pending {
		if n.ID == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			break
		}
	}
}
