package broker

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

const (
	availabilityChannel = "tickets:availability"
	notificationChannel = "tickets:notifications"
)

// RedisEventBroker implements EventBroker using pub/sub
type RedisEventBroker struct {
	client        *redis.Client
	availability  *redis.PubSub
	notifications *redis.PubSub
	ctx           context.Context
}

func NewRedisEventBroker(redisURL string) (*RedisEventBroker, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisEventBroker{
		client: client,
		ctx:    ctx,
	}, nil
}

func (r *RedisEventBroker) PublishAvailability(update AvailabilityUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, availabilityChannel, data).Err()
}

func (r *RedisEventBroker) SubscribeAvailability() (<-chan AvailabilityUpdate, error) {
	r.availability = r.client.Subscribe(r.ctx, availabilityChannel)

	updates := make(chan AvailabilityUpdate, 100)

	go func() {
		defer close(updates)

		for redisMsg := range r.availability.Channel() {
			var update AvailabilityUpdate

			if err := json.Unmarshal([]byte(redisMsg.Payload), &update); err != nil {
				continue
			}

			updates <- update
		}
	}()

	return updates, nil
}

func (r *RedisEventBroker) PublishNotification(n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, notificationChannel, data).Err()
}

func (r *RedisEventBroker) SubscribeNotifications() (<-chan Notification, error) {
	r.notifications = r.client.Subscribe(r.ctx, notificationChannel)

	notifications := make(chan Notification, 100)

	go func() {
		defer close(notifications)

		for redisMsg := range r.notifications.Channel() {
			var n Notification

			if err := json.Unmarshal([]byte(redisMsg.Payload), &n); err != nil {
				continue
			}

			notifications <- n
		}
	}()

	return notifications, nil
}

func (r *RedisEventBroker) Close() error {
	if r.availability != nil {
		r.availability.Close()
	}
	if r.notifications != nil {
		r.notifications.Close()
	}
	return r.client.Close()
}
