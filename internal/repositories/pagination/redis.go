package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/remindme/internal/common/uuid"
	"github.com/KirkDiggler/remindme/internal/models"
)

const (
	sessionKeyPrefix = "pages:"

	// DefaultTTL is how long an untouched listing keeps answering its buttons
	DefaultTTL = 60 * time.Second
)

// ErrSessionNotFound is returned when a session expired or never existed
var ErrSessionNotFound = errors.New("page session not found")

type Config struct {
	RedisClient *redis.Client
	UUID        uuid.UUID
	TTL         time.Duration
}

type redisRepository struct {
	client *redis.Client
	uuid   uuid.UUID
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed pagination repository
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

	id := cfg.UUID
	if id == nil {
		id = uuid.New()
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &redisRepository{
		client: cfg.RedisClient,
		uuid:   id,
		ttl:    ttl,
	}, nil
}

func (r *redisRepository) Save(ctx context.Context, input *SaveInput) (*models.PageSession, error) {
	if input == nil || input.Session == nil {
		return nil, errors.New("input and session cannot be nil")
	}

	session := *input.Session
	if session.ID == "" {
		session.ID = r.uuid.NewUUID()
	}

	data, err := json.Marshal(&session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, data, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to save page session: %w", err)
	}

	return &session, nil
}

// Get returns the session and restarts its TTL, so a listing stays usable
// while someone keeps paging through it
func (r *redisRepository) Get(ctx context.Context, input *GetInput) (*models.PageSession, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	data, err := r.client.GetEx(ctx, sessionKeyPrefix+input.SessionID, r.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get page session: %w", err)
	}

	var session models.PageSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page session: %w", err)
	}

	return &session, nil
}
