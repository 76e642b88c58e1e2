package engine

import (
	"encoding/json"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"
)

// 睡眠窗口推算参数
const (
	// DefaultSleepMinutes 只有单侧信号时用于补全另一侧的默认时长
	DefaultSleepMinutes = 420

	// 合理时长范围，越界时强制回拉
	minPlausibleMinutes = 180
	maxPlausibleMinutes = 840
	shortForcedMinutes  = 360
	longForcedMinutes   = 480

	// 7 天中位数校准
	medianToleranceHours    = 1.5
	minRecordsForCalibration = 3
)

// EstimateSleepWindow 从原始活动信号推算某日的睡眠窗口
// recent 为该用户最近 7 天的睡眠记录（只读，用于置信度校准），由调用方提供。
// 永不失败：信号全空时也会返回占位记录（睡眠字段为 nil、置信度 1 星）。
func EstimateSleepWindow(userID, date string, signals domain.RawSignalSet, recent []domain.SleepRecord) domain.SleepRecord {
	snapshot, _ := json.Marshal(signals)

	record := domain.SleepRecord{
		UserID:            userID,
		Date:              date,
		Source:            domain.SleepSourceEstimated,
		ConfidenceStars:   1,
		RawSignalSnapshot: snapshot,
	}

	// 入睡候选：三个"睡前"信号中最晚的
	bedtime, bedFromDevice := latestOf(
		candidate{signals.LastAppSessionEnd, false},
		candidate{signals.LastNotificationResponse, false},
		candidate{signals.LastDeviceActive, true},
	)
	// 醒来候选：三个"醒后"信号中最早的
	waketime, wakeFromDevice := earliestOf(
		candidate{signals.FirstAppSessionStart, false},
		candidate{signals.FirstNotificationResponse, false},
		candidate{signals.FirstDeviceActive, true},
	)

	if bedtime == nil && waketime == nil {
		return record
	}

	bedReal := bedtime != nil
	wakeReal := waketime != nil

	// 单侧缺失时按默认时长补全
	if bedtime == nil {
		t := waketime.Add(-time.Duration(DefaultSleepMinutes) * time.Minute)
		bedtime = &t
	}
	if waketime == nil {
		t := bedtime.Add(time.Duration(DefaultSleepMinutes) * time.Minute)
		waketime = &t
	}

	// 合理范围护栏
	duration := int(waketime.Sub(*bedtime).Minutes())
	if duration < minPlausibleMinutes {
		t := waketime.Add(-time.Duration(shortForcedMinutes) * time.Minute)
		bedtime = &t
		duration = shortForcedMinutes
	} else if duration > maxPlausibleMinutes {
		t := bedtime.Add(time.Duration(longForcedMinutes) * time.Minute)
		waketime = &t
		duration = longForcedMinutes
	}

	record.Bedtime = bedtime
	record.Waketime = waketime
	record.DurationMinutes = &duration
	record.ConfidenceStars = confidenceStars(
		bedReal, wakeReal,
		signals.NonNullCount(),
		bedFromDevice || wakeFromDevice,
		*bedtime, *waketime, recent,
	)
	return record
}

type candidate struct {
	ts         *time.Time
	fromDevice bool
}

func latestOf(candidates ...candidate) (*time.Time, bool) {
	var best *time.Time
	fromDevice := false
	for _, c := range candidates {
		if c.ts == nil {
			continue
		}
		if best == nil || c.ts.After(*best) {
			best = c.ts
			fromDevice = c.fromDevice
		}
	}
	return best, fromDevice
}

func earliestOf(candidates ...candidate) (*time.Time, bool) {
	var best *time.Time
	fromDevice := false
	for _, c := range candidates {
		if c.ts == nil {
			continue
		}
		if best == nil || c.ts.Before(*best) {
			best = c.ts
			fromDevice = c.fromDevice
		}
	}
	return best, fromDevice
}

// confidenceStars 置信度打分（累计得分映射为 1-3 星）
// 得分项：入睡候选为真实信号 +1；醒来候选为真实信号 +1；
// 6 个信号字段中至少 4 个非空 +1；任一设备活跃信号被采用 +1；
// 推算出的入睡/醒来时刻分别落在最近 7 天中位数 ±1.5 小时内各 +1
// （仅当可用历史记录 ≥3 条时参与）。
func confidenceStars(bedReal, wakeReal bool, nonNull int, deviceContributed bool, bedtime, waketime time.Time, recent []domain.SleepRecord) int {
	points := 0
	if bedReal {
		points++
	}
	if wakeReal {
		points++
	}
	if nonNull >= 4 {
		points++
	}
	if deviceContributed {
		points++
	}

	var bedHours, wakeHours []float64
	for _, r := range recent {
		if r.Bedtime != nil {
			bedHours = append(bedHours, sleepDayClockHours(*r.Bedtime))
		}
		if r.Waketime != nil {
			wakeHours = append(wakeHours, sleepDayClockHours(*r.Waketime))
		}
	}
	if len(bedHours) >= minRecordsForCalibration {
		if median, ok := medianClockHours(bedHours); ok &&
			clockDistanceHours(sleepDayClockHours(bedtime), median) <= medianToleranceHours {
			points++
		}
	}
	if len(wakeHours) >= minRecordsForCalibration {
		if median, ok := medianClockHours(wakeHours); ok &&
			clockDistanceHours(sleepDayClockHours(waketime), median) <= medianToleranceHours {
			points++
		}
	}

	switch {
	case points <= 1:
		return 1
	case points <= 3:
		return 2
	default:
		return 3
	}
}
