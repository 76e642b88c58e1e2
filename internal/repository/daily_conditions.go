package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"

	"go.uber.org/zap"
)

// DailyConditionsRepository 当日状态仓库
type DailyConditionsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDailyConditionsRepository 创建当日状态仓库
func NewDailyConditionsRepository(db *sql.DB, logger *zap.Logger) *DailyConditionsRepository {
	return &DailyConditionsRepository{
		db:     db,
		logger: logger,
	}
}

const dailyConditionColumns = `
			condition_id,
			user_id,
			date::text,
			state,
			score_internal,
			energy_curve,
			drivers,
			updated_at`

// GetDailyCondition 获取某用户某日的状态，不存在时返回 (nil, nil)
func (r *DailyConditionsRepository) GetDailyCondition(ctx context.Context, userID, date string) (*domain.DailyCondition, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if date == "" {
		return nil, fmt.Errorf("date is required")
	}

	query := `
		SELECT ` + dailyConditionColumns + `
		FROM daily_conditions
		WHERE user_id = $1
		  AND date = $2
	`

	condition, err := r.scanDailyCondition(r.db.QueryRowContext(ctx, query, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily condition: %w", err)
	}
	return condition, nil
}

// ListDailyConditions 列出日期区间（含两端）内的状态，按日期升序
func (r *DailyConditionsRepository) ListDailyConditions(ctx context.Context, userID, fromDate, toDate string) ([]domain.DailyCondition, error) {
	query := `
		SELECT ` + dailyConditionColumns + `
		FROM daily_conditions
		WHERE user_id = $1
		  AND date >= $2::date
		  AND date <= $3::date
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily conditions: %w", err)
	}
	defer rows.Close()

	var conditions []domain.DailyCondition
	for rows.Next() {
		condition, err := r.scanDailyCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily condition: %w", err)
		}
		conditions = append(conditions, *condition)
	}
	return conditions, rows.Err()
}

// Upsert 写入当日状态（整体覆盖，上游任何输入变化后都重算）
// condition_id 在冲突时保留首次写入的值。
func (r *DailyConditionsRepository) Upsert(ctx context.Context, condition *domain.DailyCondition) (*domain.DailyCondition, error) {
	curveJSON, err := json.Marshal(condition.EnergyCurve)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal energy curve: %w", err)
	}
	driversJSON, err := json.Marshal(condition.Drivers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal drivers: %w", err)
	}

	query := `
		INSERT INTO daily_conditions (
			condition_id, user_id, date, state, score_internal,
			energy_curve, drivers, updated_at
		) VALUES ($1, $2, $3::date, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id, date)
		DO UPDATE SET
			state = EXCLUDED.state,
			score_internal = EXCLUDED.score_internal,
			energy_curve = EXCLUDED.energy_curve,
			drivers = EXCLUDED.drivers,
			updated_at = NOW()
		RETURNING ` + dailyConditionColumns + `
	`

	stored, err := r.scanDailyCondition(r.db.QueryRowContext(ctx, query,
		condition.ConditionID, condition.UserID, condition.Date,
		string(condition.State), condition.ScoreInternal,
		curveJSON, driversJSON,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily condition: %w", err)
	}
	return stored, nil
}

func (r *DailyConditionsRepository) scanDailyCondition(row rowScanner) (*domain.DailyCondition, error) {
	var condition domain.DailyCondition
	var curveJSON, driversJSON []byte

	err := row.Scan(
		&condition.ConditionID,
		&condition.UserID,
		&condition.Date,
		&condition.State,
		&condition.ScoreInternal,
		&curveJSON,
		&driversJSON,
		&condition.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(curveJSON) > 0 {
		if err := json.Unmarshal(curveJSON, &condition.EnergyCurve); err != nil {
			return nil, fmt.Errorf("failed to unmarshal energy curve: %w", err)
		}
	}
	if len(driversJSON) > 0 {
		if err := json.Unmarshal(driversJSON, &condition.Drivers); err != nil {
			return nil, fmt.Errorf("failed to unmarshal drivers: %w", err)
		}
	}
	return &condition, nil
}
