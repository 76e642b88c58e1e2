package invalidation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 失效事件类型：通知下游（叙事/简报生成方）某日的派生产物已过期
const (
	EventSleepUpdated     = "sleep.updated"
	EventSleepCorrected   = "sleep.corrected"
	EventConditionUpdated = "condition.updated"
)

// Publisher 向 Redis Streams 发布缓存失效事件
type Publisher struct {
	redisClient *redis.Client
	stream      string
	logger      *zap.Logger
}

// NewPublisher 创建失效事件发布器
func NewPublisher(redisClient *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		redisClient: redisClient,
		stream:      stream,
		logger:      logger,
	}
}

// PublishStale 发布某用户某日数据已变更的事件
func (p *Publisher) PublishStale(ctx context.Context, eventType, userID, date string) error {
	id, err := p.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"event_type": eventType,
			"user_id":    userID,
			"date":       date,
			"timestamp":  fmt.Sprintf("%d", time.Now().Unix()),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish invalidation event: %w", err)
	}

	p.logger.Debug("Published invalidation event",
		zap.String("stream", p.stream),
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.String("date", date),
		zap.String("message_id", id),
	)
	return nil
}
