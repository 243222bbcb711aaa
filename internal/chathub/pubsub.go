package chathub

import (
	"context"
	"encoding/json"
	"time"

	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const presencePrefix = "marketzone:presence:"

// RedisRelay fans live events out to the other server instances over Redis
// Pub/Sub and keeps per-user presence as a set of instance ids.
type RedisRelay struct {
	rdb         *redis.Client
	channel     string
	instanceID  string
	presenceTTL time.Duration
}

func NewRedisRelay(rdb *redis.Client, channel string, presenceTTL time.Duration) *RedisRelay {
	return &RedisRelay{
		rdb:         rdb,
		channel:     channel,
		instanceID:  uuid.NewString(),
		presenceTTL: presenceTTL,
	}
}

func (r *RedisRelay) InstanceID() string { return r.instanceID }

type relayEnvelope struct {
	Origin string          `json:"origin"`
	UserID string          `json:"userId"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func encodeEnvelope(origin, userID string, evt models.LiveEvent) ([]byte, error) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(relayEnvelope{Origin: origin, UserID: userID, Event: evt.Event, Data: data})
}

func decodeEnvelope(payload string) (relayEnvelope, error) {
	var env relayEnvelope
	err := json.Unmarshal([]byte(payload), &env)
	return env, err
}

// Publish публікує подію для userID у спільний канал.
func (r *RedisRelay) Publish(ctx context.Context, userID string, evt models.LiveEvent) error {
	payload, err := encodeEnvelope(r.instanceID, userID, evt)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, payload).Err()
}

func (r *RedisRelay) SetOnline(ctx context.Context, userID string) error {
	key := presencePrefix + userID
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, key, r.instanceID)
	pipe.Expire(ctx, key, r.presenceTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *RedisRelay) SetOffline(ctx context.Context, userID string) error {
	return r.rdb.SRem(ctx, presencePrefix+userID, r.instanceID).Err()
}

func (r *RedisRelay) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := r.rdb.SCard(ctx, presencePrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Listen delivers events published by other instances until ctx is done.
func (r *RedisRelay) Listen(ctx context.Context, deliver func(userID string, evt models.LiveEvent) bool) error {
	pubsub := r.rdb.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	// чекаємо підтвердження підписки
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			env, err := decodeEnvelope(msg.Payload)
			if err != nil {
				logger.Warn().Err(err).Msg("error unmarshalling relay message")
				continue
			}
			if env.Origin == r.instanceID {
				continue
			}
			deliver(env.UserID, models.LiveEvent{Event: env.Event, Data: env.Data})
		}
	}
}
