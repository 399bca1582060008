package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/remindme/internal/models"
)

const (
	interactionKeyPrefix = "interaction:"

	// DefaultTTL matches how long Discord accepts follow-ups on a token
	DefaultTTL = 15 * time.Minute
)

// ErrInteractionNotFound is returned when no context is stored for a reminder
var ErrInteractionNotFound = errors.New("interaction not found")

// Config holds configuration for the Redis interaction repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL overrides DefaultTTL when positive
	TTL time.Duration
}

type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed interaction repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    ttl,
	}, nil
}

func interactionKey(reminderID int64) string {
	return fmt.Sprintf("%s%d", interactionKeyPrefix, reminderID)
}

// Save stores the context with the repository TTL
func (r *redisRepository) Save(ctx context.Context, input *SaveInput) error {
	if input == nil || input.Context == nil {
		return errors.New("input and context cannot be nil")
	}

	if input.Context.ApplicationID == "" || input.Context.Token == "" {
		return errors.New("application ID and token cannot be empty")
	}

	data, err := json.Marshal(input.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction: %w", err)
	}

	if err := r.client.Set(ctx, interactionKey(input.ReminderID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save interaction: %w", err)
	}

	return nil
}

// Get retrieves the context for a reminder
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*models.InteractionContext, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	data, err := r.client.Get(ctx, interactionKey(input.ReminderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInteractionNotFound
		}
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}

	var ic models.InteractionContext
	if err := json.Unmarshal(data, &ic); err != nil {
		return nil, fmt.Errorf("failed to unmarshal interaction: %w", err)
	}

	return &ic, nil
}

// Delete removes the context. Deleting an absent context is not an error.
func (r *redisRepository) Delete(ctx context.Context, input *DeleteInput) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}

	if err := r.client.Del(ctx, interactionKey(input.ReminderID)).Err(); err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}

	return nil
}
