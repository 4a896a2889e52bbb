package bus

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/cskr/pubsub"
)

const defaultCapacity = 64

type Subscription chan any

type MessageBus interface {
	Publish(topic string, msg any)
	Subscribe(topic string) Subscription
	Unsubscribe(ch Subscription, topics ...string)
	Close()
}

type PubSubBus struct {
	ps     *pubsub.PubSub
	logger *slog.Logger
}

func New(logger *slog.Logger) *PubSubBus {
	if logger == nil {
		logger = slog.Default()
	}

	return &PubSubBus{
		ps:     pubsub.New(defaultCapacity),
		logger: logger,
	}
}

func (b *PubSubBus) Publish(topic string, msg any) {
	b.logger.Debug("publish", "topic", topic, "payload_type", payloadType(msg))
	b.ps.Pub(msg, topic)
}

func (b *PubSubBus) Subscribe(topic string) Subscription {
	ch := b.ps.Sub(topic)
	b.logger.Debug("subscribe", "topic", topic)

	return ch
}

func (b *PubSubBus) Unsubscribe(ch Subscription, topics ...string) {
	if len(topics) == 0 {
		b.ps.Unsub(ch)
		b.logger.Debug("unsubscribe", "mode", "all")
		return
	}
	b.ps.Unsub(ch, topics...)
	b.logger.Debug("unsubscribe", "topics", topics)
}

func (b *PubSubBus) Close() {
	b.ps.Shutdown()
}

// Listen delivers every message published on topic to fn until ctx is done
// or the returned stop func is called.
//
// stop unsubscribes and blocks until every message published before it was
// handed to fn, so callers can rely on earlier publishes being processed.
func Listen(ctx context.Context, b MessageBus, topic string, fn func(msg any)) (stop func()) {
	sub := b.Subscribe(topic)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				go b.Unsubscribe(sub, topic)
				for range sub {
				}
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				fn(raw)
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			select {
			case <-done:
				return
			default:
			}
			// pubsub closes sub once it is drained of earlier publishes.
			b.Unsubscribe(sub, topic)
			<-done
		})
	}
}

func payloadType(v any) string {
	if v == nil {
		return "<nil>"
	}

	return reflect.TypeOf(v).String()
}
