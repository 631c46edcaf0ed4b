package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gigboard/api/internal/util"

	"github.com/redis/go-redis/v9"
)

const channel = "gigboard:events"

// RedisFanout bridges the in-process bus across processes: events published
// locally go out on a Redis channel, and events from other processes are
// re-delivered into the local bus. This replaces the prototype's 1-second
// localStorage polling loop.
type RedisFanout struct {
	id     string
	client *redis.Client
	bus    *Bus
	pubsub *redis.PubSub
	done   chan struct{}
}

func NewRedisFanout(redisURL string, bus *Bus) (*RedisFanout, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisFanoutWithClient(client, bus), nil
}

func NewRedisFanoutWithClient(client *redis.Client, bus *Bus) *RedisFanout {
	f := &RedisFanout{
		id:     util.NewID("proc"),
		client: client,
		bus:    bus,
		pubsub: client.Subscribe(context.Background(), channel),
		done:   make(chan struct{}),
	}
	go f.receiveLoop()
	return f
}

// Publish sends an event to peers. Events are stamped with the sender's
// process ID; the receive loop drops the sender's own messages so local
// subscribers, already notified via the bus, do not see them twice.
func (f *RedisFanout) Publish(ctx context.Context, event Event) error {
	event.Origin = f.id
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := f.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (f *RedisFanout) receiveLoop() {
	ch := f.pubsub.Channel()
	for {
		select {
		case <-f.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("events: drop malformed event: %v", err)
				continue
			}
			if event.Origin == f.id {
				continue
			}
			f.bus.Publish(context.Background(), event)
		}
	}
}

func (f *RedisFanout) Close() error {
	close(f.done)
	if err := f.pubsub.Close(); err != nil {
		return err
	}
	return f.client.Close()
}
