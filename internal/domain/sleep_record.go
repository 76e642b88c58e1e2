package domain

import (
	"encoding/json"
	"time"
)

// SleepSource 睡眠记录的来源
type SleepSource string

const (
	// SleepSourceEstimated 由信号推算生成
	SleepSourceEstimated SleepSource = "estimated"
	// SleepSourceCorrectedByUser 用户手动修正（最高优先级，自动流程不得覆盖）
	SleepSourceCorrectedByUser SleepSource = "corrected_by_user"
	// SleepSourceImported 从外部数据源导入
	SleepSourceImported SleepSource = "imported"
)

// SleepRecord 睡眠记录（每个 (user_id, date) 唯一一条）
type SleepRecord struct {
	RecordID        string       `json:"record_id"`
	UserID          string       `json:"user_id"`
	Date            string       `json:"date"` // YYYY-MM-DD
	Bedtime         *time.Time   `json:"bedtime"`          // 可空：无法推算时为 nil
	Waketime        *time.Time   `json:"waketime"`         // 可空
	DurationMinutes *int         `json:"duration_minutes"` // 可空
	ConfidenceStars int          `json:"confidence_stars"` // 1-3 星
	Source          SleepSource  `json:"source"`
	RawSignalSnapshot json.RawMessage `json:"raw_signal_snapshot,omitempty"` // 推算时使用的原始输入快照（审计用）
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsCorrected 是否为用户修正的记录
func (r *SleepRecord) IsCorrected() bool {
	return r != nil && r.Source == SleepSourceCorrectedByUser
}
