package eventbus

import (
	"sync"

	"logviewer-client/internal/logging"
)

type Handler func(payload any)

// Token identifies one subscription. The zero Token is never issued.
type Token struct {
	topic Topic
	id    uint64
}

func (t Token) Topic() Topic {
	return t.topic
}

func (t Token) IsZero() bool {
	return t.id == 0
}

type subscription struct {
	id     uint64
	fn     Handler
	active bool
}

// Bus delivers every Publish synchronously, on the caller's goroutine, to
// the topic's subscribers in registration order. A handler removed during
// a delivery round is skipped for the rest of that round.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	topics map[Topic][]*subscription
	logger *logging.Logger
}

func New(logger *logging.Logger) *Bus {
	if logger == nil {
		panic("eventbus.New: logger must not be nil")
	}
	return &Bus{
		topics: make(map[Topic][]*subscription),
		logger: logger.Component("eventbus"),
	}
}

func (b *Bus) Subscribe(topic Topic, fn Handler) Token {
	if fn == nil {
		panic("eventbus.Bus.Subscribe: handler must not be nil")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &subscription{id: b.nextID, fn: fn, active: true}
	b.topics[topic] = append(b.topics[topic], sub)
	return Token{topic: topic, id: sub.id}
}

// Unsubscribe removes the subscription. It reports false for unknown or
// already removed tokens.
func (b *Bus) Unsubscribe(token Token) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[token.topic]
	for i, sub := range subs {
		if sub.id != token.id {
			continue
		}
		sub.active = false
		next := append(subs[:i:i], subs[i+1:]...)
		if len(next) == 0 {
			delete(b.topics, token.topic)
		} else {
			b.topics[token.topic] = next
		}
		return true
	}
	return false
}

// Publish returns the number of handlers that received payload.
func (b *Bus) Publish(topic Topic, payload any) int {
	b.mu.Lock()
	subs := append([]*subscription(nil), b.topics[topic]...)
	b.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		b.mu.Lock()
		active := sub.active
		b.mu.Unlock()
		if !active {
			continue
		}
		sub.fn(payload)
		delivered++
	}
	if delivered == 0 && b.logger.DebugEnabled() {
		b.logger.Debug("event had no subscribers", logging.Field("topic", string(topic)))
	}
	return delivered
}

// Subscribers returns the number of live subscriptions on topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}
