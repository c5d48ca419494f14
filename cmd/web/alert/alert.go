// Package alert holds the transient, single-slot message shown to a visitor.
package alert

import (
	"sync"
	"time"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// DefaultTTL is how long a message stays visible.
const DefaultTTL = 5 * time.Second

type Message struct {
	Kind      Kind
	Text      string
	ExpiresAt time.Time
}

// Notifier keeps at most one message. A newer message replaces the older one.
type Notifier struct {
	mu  sync.Mutex
	msg *Message
	ttl time.Duration
	now func() time.Time
}

func NewNotifier() *Notifier {
	return &Notifier{ttl: DefaultTTL, now: time.Now}
}

func (n *Notifier) Show(kind Kind, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msg = &Message{Kind: kind, Text: text, ExpiresAt: n.clock().Add(n.ttl)}
}

func (n *Notifier) Success(text string) { n.Show(KindSuccess, text) }
func (n *Notifier) Error(text string)   { n.Show(KindError, text) }
func (n *Notifier) Info(text string)    { n.Show(KindInfo, text) }

// Pop returns the pending message and clears the slot. Expired messages are dropped.
func (n *Notifier) Pop() (Message, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.msg == nil {
		return Message{}, false
	}
	m := *n.msg
	n.msg = nil
	if !n.clock().Before(m.ExpiresAt) {
		return Message{}, false
	}
	return m, true
}

func (n *Notifier) clock() time.Time {
	if n.now == nil {
		return time.Now()
	}
	return n.now()
}
