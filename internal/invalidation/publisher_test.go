package invalidation

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestPublisher(t *testing.T) (*redis.Client, *Publisher) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return redisClient, NewPublisher(redisClient, "condition:events", zap.NewNop())
}

func TestPublisher_PublishStale(t *testing.T) {
	redisClient, publisher := setupTestPublisher(t)
	ctx := context.Background()

	err := publisher.PublishStale(ctx, EventSleepCorrected, "user-1", "2026-03-11")
	require.NoError(t, err)

	messages, err := redisClient.XRange(ctx, "condition:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)

	assert.Equal(t, EventSleepCorrected, messages[0].Values["event_type"])
	assert.Equal(t, "user-1", messages[0].Values["user_id"])
	assert.Equal(t, "2026-03-11", messages[0].Values["date"])
	assert.NotEmpty(t, messages[0].Values["timestamp"])
}

func TestPublisher_PublishStale_MultipleEvents(t *testing.T) {
	redisClient, publisher := setupTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, publisher.PublishStale(ctx, EventSleepUpdated, "user-1", "2026-03-11"))
	require.NoError(t, publisher.PublishStale(ctx, EventConditionUpdated, "user-1", "2026-03-11"))

	messages, err := redisClient.XRange(ctx, "condition:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, EventSleepUpdated, messages[0].Values["event_type"])
	assert.Equal(t, EventConditionUpdated, messages[1].Values["event_type"])
}
