package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"

	"go.uber.org/zap"
)

// SleepRecordsRepository 睡眠记录仓库
type SleepRecordsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSleepRecordsRepository 创建睡眠记录仓库
func NewSleepRecordsRepository(db *sql.DB, logger *zap.Logger) *SleepRecordsRepository {
	return &SleepRecordsRepository{
		db:     db,
		logger: logger,
	}
}

const sleepRecordColumns = `
			record_id,
			user_id,
			date::text,
			bedtime,
			waketime,
			duration_minutes,
			confidence_stars,
			source,
			raw_signal_snapshot,
			updated_at`

// GetSleepRecord 获取某用户某日的睡眠记录，不存在时返回 (nil, nil)
func (r *SleepRecordsRepository) GetSleepRecord(ctx context.Context, userID, date string) (*domain.SleepRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if date == "" {
		return nil, fmt.Errorf("date is required")
	}

	query := `
		SELECT ` + sleepRecordColumns + `
		FROM sleep_records
		WHERE user_id = $1
		  AND date = $2
	`

	record, err := r.scanSleepRecord(r.db.QueryRowContext(ctx, query, userID, date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sleep record: %w", err)
	}
	return record, nil
}

// GetRecentSleepRecords 获取某日之前（不含当日）最近 days 天的睡眠记录
// 置信度校准用，按日期倒序返回。
func (r *SleepRecordsRepository) GetRecentSleepRecords(ctx context.Context, userID, beforeDate string, days int) ([]domain.SleepRecord, error) {
	query := `
		SELECT ` + sleepRecordColumns + `
		FROM sleep_records
		WHERE user_id = $1
		  AND date < $2::date
		  AND date >= $2::date - $3 * INTERVAL '1 day'
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, beforeDate, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sleep records: %w", err)
	}
	defer rows.Close()

	var records []domain.SleepRecord
	for rows.Next() {
		record, err := r.scanSleepRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sleep record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// ListSleepRecords 列出日期区间（含两端）内的睡眠记录，按日期升序
func (r *SleepRecordsRepository) ListSleepRecords(ctx context.Context, userID, fromDate, toDate string) ([]domain.SleepRecord, error) {
	query := `
		SELECT ` + sleepRecordColumns + `
		FROM sleep_records
		WHERE user_id = $1
		  AND date >= $2::date
		  AND date <= $3::date
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep records: %w", err)
	}
	defer rows.Close()

	var records []domain.SleepRecord
	for rows.Next() {
		record, err := r.scanSleepRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sleep record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// UpsertEstimated 写入推算结果（原子条件覆盖）
// 已被用户修正的行绝不覆盖：冲突更新带 source 条件，未更新时读回现有行。
// 返回值第二项表示本次是否实际写入。
func (r *SleepRecordsRepository) UpsertEstimated(ctx context.Context, record *domain.SleepRecord) (*domain.SleepRecord, bool, error) {
	query := `
		INSERT INTO sleep_records (
			record_id, user_id, date, bedtime, waketime,
			duration_minutes, confidence_stars, source, raw_signal_snapshot, updated_at
		) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (user_id, date)
		DO UPDATE SET
			bedtime = EXCLUDED.bedtime,
			waketime = EXCLUDED.waketime,
			duration_minutes = EXCLUDED.duration_minutes,
			confidence_stars = EXCLUDED.confidence_stars,
			source = EXCLUDED.source,
			raw_signal_snapshot = EXCLUDED.raw_signal_snapshot,
			updated_at = NOW()
		WHERE sleep_records.source <> 'corrected_by_user'
		RETURNING ` + sleepRecordColumns + `
	`

	stored, err := r.scanSleepRecord(r.db.QueryRowContext(ctx, query,
		record.RecordID, record.UserID, record.Date,
		nullableTime(record.Bedtime), nullableTime(record.Waketime),
		nullableInt(record.DurationMinutes), record.ConfidenceStars,
		string(record.Source), []byte(record.RawSignalSnapshot),
	))
	if err == sql.ErrNoRows {
		// 冲突行已被用户修正，未写入，返回现有行
		existing, getErr := r.GetSleepRecord(ctx, record.UserID, record.Date)
		if getErr != nil {
			return nil, false, getErr
		}
		if existing == nil {
			return nil, false, fmt.Errorf("sleep record disappeared during upsert: user=%s date=%s", record.UserID, record.Date)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert estimated sleep record: %w", err)
	}
	return stored, true, nil
}

// UpsertCorrected 写入用户修正结果（无条件覆盖：修正总是生效）
func (r *SleepRecordsRepository) UpsertCorrected(ctx context.Context, record *domain.SleepRecord) (*domain.SleepRecord, error) {
	query := `
		INSERT INTO sleep_records (
			record_id, user_id, date, bedtime, waketime,
			duration_minutes, confidence_stars, source, raw_signal_snapshot, updated_at
		) VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (user_id, date)
		DO UPDATE SET
			bedtime = EXCLUDED.bedtime,
			waketime = EXCLUDED.waketime,
			duration_minutes = EXCLUDED.duration_minutes,
			confidence_stars = EXCLUDED.confidence_stars,
			source = EXCLUDED.source,
			raw_signal_snapshot = EXCLUDED.raw_signal_snapshot,
			updated_at = NOW()
		RETURNING ` + sleepRecordColumns + `
	`

	stored, err := r.scanSleepRecord(r.db.QueryRowContext(ctx, query,
		record.RecordID, record.UserID, record.Date,
		nullableTime(record.Bedtime), nullableTime(record.Waketime),
		nullableInt(record.DurationMinutes), record.ConfidenceStars,
		string(record.Source), []byte(record.RawSignalSnapshot),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert corrected sleep record: %w", err)
	}
	return stored, nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SleepRecordsRepository) scanSleepRecord(row rowScanner) (*domain.SleepRecord, error) {
	var record domain.SleepRecord
	var bedtime, waketime sql.NullTime
	var duration sql.NullInt64
	var snapshot []byte

	err := row.Scan(
		&record.RecordID,
		&record.UserID,
		&record.Date,
		&bedtime,
		&waketime,
		&duration,
		&record.ConfidenceStars,
		&record.Source,
		&snapshot,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if bedtime.Valid {
		t := bedtime.Time
		record.Bedtime = &t
	}
	if waketime.Valid {
		t := waketime.Time
		record.Waketime = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		record.DurationMinutes = &d
	}
	record.RawSignalSnapshot = snapshot
	return &record, nil
}

// 驱动会解引用非空指针、把空指针写为 NULL
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
