package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"
)

// ErrWaketimeNotAfterBedtime 修正输入非法：醒来时刻必须严格晚于入睡时刻
var ErrWaketimeNotAfterBedtime = errors.New("waketime must be strictly after bedtime")

// CorrectionDelta 用户修正值与先前推算值的差异（供校准分析，不落库）
type CorrectionDelta struct {
	BedtimeDeltaMinutes  int `json:"bedtime_delta_minutes"`
	WaketimeDeltaMinutes int `json:"waketime_delta_minutes"`
	DurationDeltaMinutes int `json:"duration_delta_minutes"`
	PriorConfidenceStars int `json:"prior_confidence_stars"`
}

// CorrectionResult 修正结果：新记录、与推算基线的差异、非致命警告
type CorrectionResult struct {
	Record   domain.SleepRecord
	Delta    *CorrectionDelta
	Warnings []string
}

// ApplySleepCorrection 校验并生成用户修正的睡眠记录
// 用户输入视为权威：时长越界只产生警告，绝不强制回拉。
// prior 为该日已存在的记录（可为 nil）；差异基线只取自 source=estimated 的
// 记录——对已修正过的记录重复提交不会再生成差异（基线只快照一次）。
func ApplySleepCorrection(userID, date string, bedtime, waketime time.Time, prior *domain.SleepRecord) (*CorrectionResult, error) {
	if !waketime.After(bedtime) {
		return nil, ErrWaketimeNotAfterBedtime
	}

	duration := int(waketime.Sub(bedtime).Minutes())

	var warnings []string
	if duration < minPlausibleMinutes {
		warnings = append(warnings, fmt.Sprintf("corrected duration %dm is below the plausible minimum of %dm", duration, minPlausibleMinutes))
	} else if duration > maxPlausibleMinutes {
		warnings = append(warnings, fmt.Sprintf("corrected duration %dm is above the plausible maximum of %dm", duration, maxPlausibleMinutes))
	}

	var delta *CorrectionDelta
	if prior != nil && prior.Source == domain.SleepSourceEstimated {
		delta = &CorrectionDelta{PriorConfidenceStars: prior.ConfidenceStars}
		if prior.Bedtime != nil {
			delta.BedtimeDeltaMinutes = int(bedtime.Sub(*prior.Bedtime).Minutes())
		}
		if prior.Waketime != nil {
			delta.WaketimeDeltaMinutes = int(waketime.Sub(*prior.Waketime).Minutes())
		}
		if prior.DurationMinutes != nil {
			delta.DurationDeltaMinutes = duration - *prior.DurationMinutes
		}
	}

	snapshot, _ := json.Marshal(map[string]any{
		"user_bedtime":  bedtime,
		"user_waketime": waketime,
	})

	record := domain.SleepRecord{
		UserID:            userID,
		Date:              date,
		Bedtime:           &bedtime,
		Waketime:          &waketime,
		DurationMinutes:   &duration,
		ConfidenceStars:   3, // 用户提供的值视为完全可信
		Source:            domain.SleepSourceCorrectedByUser,
		RawSignalSnapshot: snapshot,
	}

	return &CorrectionResult{Record: record, Delta: delta, Warnings: warnings}, nil
}
