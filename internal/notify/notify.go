// Package notify carries short-lived user-facing messages ("toasts").
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a notification.
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
)

// Notification is one message shown to the user.
type Notification struct {
	ID      uuid.UUID `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// New stamps a notification with a fresh ID and the current time.
func New(level Level, message string) Notification {
	return Notification{
		ID:      uuid.New(),
		Level:   level,
		Message: message,
		Time:    time.Now(),
	}
}

// Notifier receives notifications.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

// Notify calls f(n).
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Queue buffers notifications until they are drained. Safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	items []Notification
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Notify appends n.
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, n)
}

// Drain returns the buffered notifications in arrival order and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of buffered notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Printer writes one "[level] message" line per notification.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Notify writes n to the underlying writer.
func (p *Printer) Notify(n Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "[%s] %s\n", n.Level, n.Message)
}
