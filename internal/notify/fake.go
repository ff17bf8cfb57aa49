package notify

import (
	"context"
	"sync"
)

// Outbox is a Sender that records messages instead of delivering them.
// It is used by tests and by the server when no SMTP host is configured.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned by every Send.
	Err error
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.sent = append(o.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}
