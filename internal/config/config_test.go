package config

import (
	"os"
	"testing"
)

func TestLoad_DefaultValues(t *testing.T) {
	// 清除环境变量
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// 检查默认值
	if cfg.Database.Host != "localhost" {
		t.Errorf("Expected DB_HOST default 'localhost', got '%s'", cfg.Database.Host)
	}

	if cfg.Database.Port != 5432 {
		t.Errorf("Expected DB_PORT default 5432, got %d", cfg.Database.Port)
	}

	if cfg.Database.Database != "alfredo" {
		t.Errorf("Expected DB_NAME default 'alfredo', got '%s'", cfg.Database.Database)
	}

	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Expected REDIS_ADDR default 'localhost:6379', got '%s'", cfg.Redis.Addr)
	}

	if cfg.Condition.RequestStream != "condition:requests" {
		t.Errorf("Expected CONDITION_REQUEST_STREAM default 'condition:requests', got '%s'", cfg.Condition.RequestStream)
	}

	if cfg.Condition.EventStream != "condition:events" {
		t.Errorf("Expected CONDITION_EVENT_STREAM default 'condition:events', got '%s'", cfg.Condition.EventStream)
	}

	if cfg.Condition.HistoryDays != 7 {
		t.Errorf("Expected CONDITION_HISTORY_DAYS default 7, got %d", cfg.Condition.HistoryDays)
	}

	if cfg.Condition.BatchSize != 10 {
		t.Errorf("Expected CONDITION_BATCH_SIZE default 10, got %d", cfg.Condition.BatchSize)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Expected LOG_LEVEL default 'info', got '%s'", cfg.Log.Level)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_HOST", "db.internal")
	os.Setenv("DB_PORT", "5433")
	os.Setenv("CONDITION_HISTORY_DAYS", "14")
	os.Setenv("COLLABORATOR_BASE_URL", "http://collaborators.internal")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Database.Host != "db.internal" {
		t.Errorf("Expected DB_HOST 'db.internal', got '%s'", cfg.Database.Host)
	}

	if cfg.Database.Port != 5433 {
		t.Errorf("Expected DB_PORT 5433, got %d", cfg.Database.Port)
	}

	if cfg.Condition.HistoryDays != 14 {
		t.Errorf("Expected CONDITION_HISTORY_DAYS 14, got %d", cfg.Condition.HistoryDays)
	}

	if cfg.Condition.CollaboratorBaseURL != "http://collaborators.internal" {
		t.Errorf("Expected COLLABORATOR_BASE_URL 'http://collaborators.internal', got '%s'", cfg.Condition.CollaboratorBaseURL)
	}
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "alfredo",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=postgres password=secret dbname=alfredo sslmode=disable"
	if got := cfg.GetDSN(); got != expected {
		t.Errorf("Expected DSN '%s', got '%s'", expected, got)
	}
}
