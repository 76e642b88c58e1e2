package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/config"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/consumer"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/database"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/invalidation"
	logpkg "github.com/chloe-sy-park/ai-alfredo-sub002/internal/logger"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/repository"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/service"
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/store"

	"go.uber.org/zap"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "alfredo-condition")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting alfredo-condition service")

	// 数据库连接
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Redis 连接
	redisClient := store.NewRedisClient(&cfg.Redis)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}

	// 组装服务
	sleepRepo := repository.NewSleepRecordsRepository(db, log)
	conditionRepo := repository.NewDailyConditionsRepository(db, log)
	kv := store.NewRedisKV(redisClient)
	publisher := invalidation.NewPublisher(redisClient, cfg.Condition.EventStream, log)

	var collaborators service.CollaboratorClient
	if cfg.Condition.CollaboratorBaseURL != "" {
		collaborators = service.NewCollaboratorClient(cfg.Condition.CollaboratorBaseURL, log)
	} else {
		log.Warn("COLLABORATOR_BASE_URL not set, recomputation will run without checkin/calendar inputs")
	}

	svc := service.NewConditionService(
		sleepRepo, conditionRepo, kv, collaborators, publisher,
		cfg.Condition.HistoryDays, cfg.Condition.TravelKeyPrefix, log,
	)

	// 重算请求消费者
	recomputeConsumer := consumer.NewRecomputeConsumer(
		redisClient, svc, log,
		cfg.Condition.RequestStream,
		cfg.Condition.ConsumerGroup,
		cfg.Condition.ConsumerName,
		int64(cfg.Condition.BatchSize),
	)

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 启动消费循环（在 goroutine 中）
	errChan := make(chan error, 1)
	go func() {
		if err := recomputeConsumer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// 等待信号或错误
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		log.Error("Consumer error", zap.Error(err))
		cancel()
	}

	log.Info("Service stopped")
}
