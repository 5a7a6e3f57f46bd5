package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"coffeebot/internal/domain"
)

type redisListClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTranscriptRepository guarda cada transcripción como una lista de Redis.
// La clave expira junto con la sesión, así el historial no sobrevive a ella.
type RedisTranscriptRepository struct {
	client redisListClient
	ttl    time.Duration
	prefix string
}

func NewRedisTranscriptRepository(client *redis.Client, ttl time.Duration) *RedisTranscriptRepository {
	return newRedisTranscriptRepository(client, ttl)
}

func newRedisTranscriptRepository(client redisListClient, ttl time.Duration) *RedisTranscriptRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTranscriptRepository{
		client: client,
		ttl:    ttl,
		prefix: "chat:transcript:",
	}
}

func (r *RedisTranscriptRepository) Append(ctx context.Context, sessionID string, turn domain.ChatTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := r.prefix + sessionID
	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("rpush transcript: %w", err)
	}
	if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
		return fmt.Errorf("expire transcript: %w", err)
	}
	return nil
}

func (r *RedisTranscriptRepository) List(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	values, err := r.client.LRange(ctx, r.prefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange transcript: %w", err)
	}

	turns := make([]domain.ChatTurn, 0, len(values))
	for _, v := range values {
		var turn domain.ChatTurn
		if err := json.Unmarshal([]byte(v), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (r *RedisTranscriptRepository) Clear(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.prefix+sessionID).Err()
}
