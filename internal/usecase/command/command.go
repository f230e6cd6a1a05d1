package command

import (
	"context"
	"sync"
	"time"

	"github.com/muhammadchandra19/bar-replay/pkg/logger"
)

// Topic names a command channel.
type Topic string

const (
	// TopicBackBar steps the cursor one bar back.
	TopicBackBar Topic = "backBar"
	// TopicForwardBar steps the cursor one bar forward.
	TopicForwardBar Topic = "forwardBar"
)

// Command is one message on the bus.
type Command struct {
	Topic Topic
	// Origin names the control that issued the command, e.g. "toolbar".
	Origin   string
	IssuedAt time.Time
}

// Handler receives commands. Handlers are told apart by value, so they must
// be comparable; pointer receivers are.
type Handler interface {
	Handle(ctx context.Context, cmd Command)
}

// Bus is an in-process publish/subscribe channel between UI controls and the player.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic][]Handler
	logger      logger.Interface
}

// NewBus creates an empty bus.
func NewBus(log logger.Interface) *Bus {
	return &Bus{
		subscribers: make(map[Topic][]Handler),
		logger:      log,
	}
}

// Subscribe registers h on topic. It reports false when h was already registered.
func (b *Bus) Subscribe(topic Topic, h Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subscribers[topic] {
		if s == h {
			return false
		}
	}
	b.subscribers[topic] = append(b.subscribers[topic], h)
	return true
}

// Unsubscribe removes h from topic. It reports false when h was not registered.
func (b *Bus) Unsubscribe(topic Topic, h Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, s := range subs {
		if s != h {
			continue
		}
		rest := make([]Handler, 0, len(subs)-1)
		rest = append(rest, subs[:i]...)
		rest = append(rest, subs[i+1:]...)
		if len(rest) == 0 {
			delete(b.subscribers, topic)
		} else {
			b.subscribers[topic] = rest
		}
		return true
	}
	return false
}

// Publish delivers cmd once to every handler subscribed to its topic, in
// subscription order, and returns how many received it. A topic without
// subscribers is a no-op.
func (b *Bus) Publish(ctx context.Context, cmd Command) int {
	b.mu.RLock()
	subs := b.subscribers[cmd.Topic]
	b.mu.RUnlock()

	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = time.Now()
	}

	b.logger.DebugContext(ctx, "command published",
		logger.NewField("topic", cmd.Topic),
		logger.NewField("origin", cmd.Origin),
		logger.NewField("subscribers", len(subs)),
	)

	for _, h := range subs {
		h.Handle(ctx, cmd)
	}
	return len(subs)
}
