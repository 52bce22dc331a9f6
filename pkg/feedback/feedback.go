// Package feedback coordinates the dashboard's ephemeral UI feedback: a
// stack of self-dismissing toast notifications and a single-slot
// confirmation for destructive actions.
package feedback

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a toast.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
)

// DefaultDuration is how long a toast stays up unless dismissed early.
const DefaultDuration = 4 * time.Second

// Toast is one notification. Toasts render in insertion order, newest last.
type Toast struct {
	ID       string        `json:"id"`
	Kind     Kind          `json:"kind"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Confirmation is a staged destructive action awaiting confirm or cancel.
type Confirmation struct {
	Title   string `json:"title"`
	Message string `json:"message"`

	onConfirm func()
}

// Center owns the toast stack and the confirmation slot. Safe for use from
// multiple handler goroutines.
type Center struct {
	mu      sync.Mutex
	toasts  []Toast
	timers  map[string]*time.Timer
	pending *Confirmation
}

func NewCenter() *Center {
	return &Center{timers: make(map[string]*time.Timer)}
}

// Push appends a toast with the default duration.
func (c *Center) Push(kind Kind, message string) Toast {
	return c.PushWithDuration(kind, message, DefaultDuration)
}

// PushWithDuration appends a toast that self-dismisses after d unless
// dismissed earlier.
func (c *Center) PushWithDuration(kind Kind, message string, d time.Duration) Toast {
	if d <= 0 {
		d = DefaultDuration
	}
	t := Toast{ID: uuid.NewString(), Kind: kind, Message: message, Duration: d}
	c.mu.Lock()
	c.toasts = append(c.toasts, t)
	c.timers[t.ID] = time.AfterFunc(d, func() { c.Dismiss(t.ID) })
	c.mu.Unlock()
	return t
}

// Dismiss removes a toast and cancels its countdown. Dismissing an unknown
// or already-expired id is a no-op.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	for i, t := range c.toasts {
		if t.ID == id {
			c.toasts = append(c.toasts[:i], c.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// Toasts returns the current stack in insertion order.
func (c *Center) Toasts() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Toast(nil), c.toasts...)
}

// Request stages a confirmation, replacing any pending one. The previous
// request's action is discarded without running.
func (c *Center) Request(title, message string, onConfirm func()) {
	c.mu.Lock()
	c.pending = &Confirmation{Title: title, Message: message, onConfirm: onConfirm}
	c.mu.Unlock()
}

// Pending returns the staged confirmation, if any.
func (c *Center) Pending() (Confirmation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return Confirmation{}, false
	}
	return *c.pending, true
}

// Confirm runs the staged action and clears the slot. It reports whether a
// confirmation was pending. The action runs outside the lock so it may push
// toasts or stage a new confirmation.
func (c *Center) Confirm() bool {
	c.mu.Lock()
	p := c.pending
	c.pending = nil
	c.mu.Unlock()
	if p == nil {
		return false
	}
	if p.onConfirm != nil {
		p.onConfirm()
	}
	return true
}

// Cancel clears the slot without running anything.
func (c *Center) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return false
	}
	c.pending = nil
	return true
}
