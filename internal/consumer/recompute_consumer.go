package consumer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RecomputeConsumer 状态重算请求消费者
// 协作方（打卡日志、日历聚合、旅行模式）在各自数据变化时向请求流投递
// {user_id, date}，由本消费者触发整体重算。
type RecomputeConsumer struct {
	redisClient  *redis.Client
	svc          service.ConditionService
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
}

// NewRecomputeConsumer 创建重算请求消费者
func NewRecomputeConsumer(
	redisClient *redis.Client,
	svc service.ConditionService,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
) *RecomputeConsumer {
	return &RecomputeConsumer{
		redisClient:  redisClient,
		svc:          svc,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
	}
}

// Start 启动消费循环（阻塞直到 ctx 取消）
func (c *RecomputeConsumer) Start(ctx context.Context) error {
	if err := c.createConsumerGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Recompute consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费请求（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeRequests(ctx); err != nil {
				c.logger.Error("Failed to consume recompute requests",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				// 成功时重置退避时间
				backoffDuration = time.Second
			}
		}
	}
}

func (c *RecomputeConsumer) createConsumerGroup(ctx context.Context) error {
	err := c.redisClient.XGroupCreateMkStream(ctx, c.stream, c.groupName, "0").Err()
	// BUSYGROUP 表示组已存在，属正常情况
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *RecomputeConsumer) consumeRequests(ctx context.Context) error {
	streams, err := c.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupName,
		Consumer: c.consumerName,
		Streams:  []string{c.stream, ">"},
		Count:    c.batchSize,
		Block:    5 * time.Second,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			c.handleMessage(ctx, message)
		}
	}
	return nil
}

// handleMessage 处理单条重算请求
// 请求本身无效时也会 ACK：重试同样会失败，留在 pending 列表没有意义。
func (c *RecomputeConsumer) handleMessage(ctx context.Context, message redis.XMessage) {
	userID, _ := message.Values["user_id"].(string)
	date, _ := message.Values["date"].(string)

	if userID == "" || date == "" {
		c.logger.Warn("Skipping malformed recompute request",
			zap.String("message_id", message.ID),
		)
		c.ack(ctx, message.ID)
		return
	}

	_, err := c.svc.RecomputeCondition(ctx, service.RecomputeConditionRequest{
		UserID: userID,
		Date:   date,
	})
	if err != nil {
		// 不 ACK，等待下次投递重试
		c.logger.Error("Failed to recompute condition",
			zap.String("message_id", message.ID),
			zap.String("user_id", userID),
			zap.String("date", date),
			zap.Error(err),
		)
		return
	}

	c.ack(ctx, message.ID)
}

func (c *RecomputeConsumer) ack(ctx context.Context, messageID string) {
	if err := c.redisClient.XAck(ctx, c.stream, c.groupName, messageID).Err(); err != nil {
		c.logger.Error("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
