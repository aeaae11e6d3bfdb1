// Package events broadcasts attendance events over Redis Pub/Sub so that
// dashboards can show a toast for each check-in and operators can tail the
// stream. Delivery is at-most-once.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ravantech1548/Face-recogn-attendance/internal/attendance/types"
)

// ChannelName returns the Pub/Sub channel for a namespace:
// "{namespace}:attendance_events".
func ChannelName(namespace string) string {
	return namespace + ":attendance_events"
}

// RedisPublisher publishes AttendanceEvents as JSON. Safe for concurrent use.
type RedisPublisher struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisPublisher connects lazily; call Ping to check reachability.
func NewRedisPublisher(opts *redis.Options, namespace string) (*RedisPublisher, error) {
	if namespace == "" {
		return nil, errors.New("redis namespace cannot be empty")
	}
	return &RedisPublisher{rdb: redis.NewClient(opts), namespace: namespace}, nil
}

func (p *RedisPublisher) Publish(ctx context.Context, ev types.AttendanceEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal attendance event: %w", err)
	}
	if err := p.rdb.Publish(ctx, ChannelName(p.namespace), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish attendance event: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection. Implements io.Closer.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Subscription delivers decoded events until Close or context cancellation.
type Subscription struct {
	events <-chan types.AttendanceEvent
	errors <-chan error
	cancel context.CancelFunc
}

func (s *Subscription) Events() <-chan types.AttendanceEvent { return s.events }

// Errors carries payloads that failed to decode. The stream continues.
func (s *Subscription) Errors() <-chan error { return s.errors }

func (s *Subscription) Close() error {
	s.cancel()
	return nil
}

// Subscribe listens on the publisher's channel. The subscription is
// confirmed with Redis before Subscribe returns, so no event published
// afterwards is missed.
func (p *RedisPublisher) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := p.rdb.Subscribe(ctx, ChannelName(p.namespace))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to attendance events: %w", err)
	}

	eventsChan := make(chan types.AttendanceEvent, 10)
	errorsChan := make(chan error, 10)
	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev types.AttendanceEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal attendance event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{events: eventsChan, errors: errorsChan, cancel: cancel}, nil
}
