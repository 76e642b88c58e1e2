package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 状态推算服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// 状态推算服务特定配置
	Condition struct {
		// Redis Streams：接收重算请求
		RequestStream string // 请求流名称，如 "condition:requests"
		ConsumerGroup string // 消费者组名称，如 "condition-engine-group"
		ConsumerName  string // 消费者名称，如 "condition-engine-1"
		BatchSize     int    // 批量处理大小，默认 10

		// Redis Streams：向下游（叙事/简报生成方）发布失效事件
		EventStream string // 事件流名称，如 "condition:events"

		// 置信度校准使用的历史天数
		HistoryDays int

		// 旅行模式标记在 Redis 中的键前缀
		TravelKeyPrefix string

		// 协作方服务（打卡、日历聚合）的基础地址，为空则不拉取
		CollaboratorBaseURL string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（带默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "alfredo")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", 10)
	cfg.Database.MaxIdle = getEnvInt("DB_MAX_IDLE", 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Condition.RequestStream = getEnv("CONDITION_REQUEST_STREAM", "condition:requests")
	cfg.Condition.ConsumerGroup = getEnv("CONDITION_CONSUMER_GROUP", "condition-engine-group")
	cfg.Condition.ConsumerName = getEnv("CONDITION_CONSUMER_NAME", "condition-engine-1")
	cfg.Condition.BatchSize = getEnvInt("CONDITION_BATCH_SIZE", 10)
	cfg.Condition.EventStream = getEnv("CONDITION_EVENT_STREAM", "condition:events")
	cfg.Condition.HistoryDays = getEnvInt("CONDITION_HISTORY_DAYS", 7)
	cfg.Condition.TravelKeyPrefix = getEnv("CONDITION_TRAVEL_KEY_PREFIX", "alfredo:user:")
	cfg.Condition.CollaboratorBaseURL = getEnv("COLLABORATOR_BASE_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultValue
}
