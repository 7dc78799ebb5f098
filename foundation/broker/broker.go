// Package broker publishes ledger events to a NATS subject so processes
// other than the node's websocket clients can follow the ledger.
package broker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject events are published on when none is given.
const DefaultSubject = "ledger.events"

// Broker encapsulates a NATS connection and the subject events go to.
type Broker struct {
	conn    *nats.Conn
	subject string
	prefix  string
}

// New connects to the NATS server at the url. Only events that start with
// the prefix are published, and the prefix is removed first. An empty
// prefix publishes everything.
func New(url string, subject string, prefix string) (*Broker, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	nc, err := nats.Connect(url,
		nats.Name("powledger"),
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", url, err)
	}

	b := Broker{
		conn:    nc,
		subject: subject,
		prefix:  prefix,
	}

	return &b, nil
}

// Subject returns the subject events are published on.
func (b *Broker) Subject() string {
	return b.subject
}

// Send publishes the event if it carries the broker's prefix. The bool
// reports whether the event was published.
func (b *Broker) Send(s string) (bool, error) {
	if !strings.HasPrefix(s, b.prefix) {
		return false, nil
	}

	msg := strings.TrimSpace(strings.TrimPrefix(s, b.prefix))
	if err := b.conn.Publish(b.subject, []byte(msg)); err != nil {
		return false, err
	}

	return true, nil
}

// Subscribe registers a callback for the events published on the subject.
func (b *Broker) Subscribe(f func(msg string)) (*nats.Subscription, error) {
	return b.conn.Subscribe(b.subject, func(m *nats.Msg) {
		f(string(m.Data))
	})
}

// Flush waits until the server has processed everything published so far.
func (b *Broker) Flush() error {
	return b.conn.Flush()
}

// Close drains the connection so pending events are delivered. Closing a
// broker that is already draining or closed is not an error.
func (b *Broker) Close() error {
	err := b.conn.Drain()
	switch {
	case err == nil:
	case errors.Is(err, nats.ErrConnectionClosed), errors.Is(err, nats.ErrConnectionDraining):
	default:
		return fmt.Errorf("draining connection: %w", err)
	}

	return nil
}
