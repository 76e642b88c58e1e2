package domain

import "time"

// ConditionState 当日状态三档
type ConditionState string

const (
	ConditionGood ConditionState = "good"
	ConditionOK   ConditionState = "ok"
	ConditionLow  ConditionState = "low"
)

// EnergyCurve 逐小时能量曲线：小时（8-20）→ 能量级别（0-3）
type EnergyCurve map[int]int

// ConditionDrivers 评分构成明细（展示与调试用）
type ConditionDrivers struct {
	// 各分量得分
	SleepComponent    int `json:"sleep_component"`    // [-30, 30]
	CheckinComponent  int `json:"checkin_component"`  // [-12, 12]
	CalendarComponent int `json:"calendar_component"` // [-8, 8]

	// 睡眠分量的子项
	DurationScore   int `json:"duration_score"`
	TimingScore     int `json:"timing_score"`
	ConfidenceScore int `json:"confidence_score"`

	// 产生各分量的原始指标
	DurationMinutes   *int          `json:"duration_minutes"`
	ConfidenceStars   int           `json:"confidence_stars"`
	BedtimeClockHours *float64      `json:"bedtime_clock_hours"` // 自 18:00 起算的小时数
	Tags              CheckinTagSet `json:"tags"`
	BusyHours         *float64      `json:"busy_hours"`
	MeetingCount      *int          `json:"meeting_count"`
}

// DailyCondition 当日状态（每个 (user_id, date) 唯一一条，总是整体重算）
type DailyCondition struct {
	ConditionID   string           `json:"condition_id"`
	UserID        string           `json:"user_id"`
	Date          string           `json:"date"` // YYYY-MM-DD
	State         ConditionState   `json:"state"`
	ScoreInternal int              `json:"score_internal"` // [0, 100]
	EnergyCurve   EnergyCurve      `json:"energy_curve"`
	Drivers       ConditionDrivers `json:"drivers"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
