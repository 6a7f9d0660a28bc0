package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"board-sync/internal/config"
)

var redisClient *redis.Client

// InitRedis initializes the Redis connection used for the board change feed
func InitRedis(cfg config.RedisConfig, log *zap.Logger) error {
	var client *redis.Client

	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return err
		}
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	redisClient = client
	log.Info("Redis connection established", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return nil
}

// GetRedis returns the Redis client, nil when Redis was never initialized
func GetRedis() *redis.Client {
	return redisClient
}

// BoardChannel returns the pub/sub channel name carrying change events for a team
func BoardChannel(teamID uuid.UUID) string {
	return fmt.Sprintf("board:%s", teamID)
}

// ChangeEvent is published on every field/task mutation. Subscribers must treat
// it as a payload-free invalidation signal and re-fetch; the table/action pair
// exists for logging only.
type ChangeEvent struct {
	Table  string `json:"table"`
	Action string `json:"action"`
}

// EventPublisher publishes board change events to Redis
type EventPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewEventPublisher creates a new EventPublisher
func NewEventPublisher(client *redis.Client, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{client: client, logger: logger}
}

// PublishChange publishes a change event for the given team. A nil client or a
// publish failure is logged and swallowed: the feed is best-effort, clients
// converge on their next full fetch regardless.
func (p *EventPublisher) PublishChange(ctx context.Context, teamID uuid.UUID, table, action string) {
	if p.client == nil {
		return
	}

	payload, err := json.Marshal(ChangeEvent{Table: table, Action: action})
	if err != nil {
		p.logger.Error("Failed to marshal change event", zap.Error(err))
		return
	}

	if err := p.client.Publish(ctx, BoardChannel(teamID), payload).Err(); err != nil {
		p.logger.Warn("Failed to publish change event",
			zap.String("team_id", teamID.String()),
			zap.String("table", table),
			zap.String("action", action),
			zap.Error(err))
	}
}

// SubscribeBoardEvents subscribes to the change feed of a single team
func SubscribeBoardEvents(client *redis.Client, teamID uuid.UUID) *redis.PubSub {
	if client == nil {
		return nil
	}
	return client.Subscribe(context.Background(), BoardChannel(teamID))
}
