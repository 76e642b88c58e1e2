package engine

import (
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"
)

// 能量曲线覆盖的小时范围（含两端）
const (
	CurveStartHour = 8
	CurveEndHour   = 20
)

const (
	energyLevelMin = 0
	energyLevelMax = 3

	// 调整规则的阈值
	lateBedtimeClockHours = 8.0 // 睡眠日时钟 > 8.0 即晚于 02:00 入睡
	shortSleepMinutes     = 360
	travelMorningCapLevel = 2
)

// 每档状态的基础曲线（下标 = 小时 - 8）
// 形态：上午爬升、午后回落、傍晚二次高峰、夜间收尾
var baseProfiles = map[domain.ConditionState][CurveEndHour - CurveStartHour + 1]int{
	domain.ConditionGood: {2, 3, 3, 3, 2, 2, 2, 3, 3, 2, 2, 2, 1},
	domain.ConditionOK:   {1, 2, 2, 2, 2, 1, 1, 2, 2, 2, 1, 1, 1},
	domain.ConditionLow:  {1, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0},
}

// GenerateEnergyCurve 由当日状态展开逐小时能量曲线（8 点到 20 点）
// 依次应用三条调整规则，最终每个小时的值都夹在 [0, 3]：
//  1. 入睡晚于约 02:00：8-10 点各降 1 级
//  2. 睡眠不足 6 小时：16-20 点各降 1 级
//  3. 旅行模式：8-12 点封顶为 2 级（只降不升）
//
// 睡眠字段全空时调整规则直接不生效，返回基础曲线。
func GenerateEnergyCurve(state domain.ConditionState, bedtime *time.Time, durationMinutes *int, travelModeEnabled bool) domain.EnergyCurve {
	profile, ok := baseProfiles[state]
	if !ok {
		profile = baseProfiles[domain.ConditionOK]
	}

	curve := make(domain.EnergyCurve, len(profile))
	for i, level := range profile {
		curve[CurveStartHour+i] = level
	}

	if bedtime != nil && sleepDayClockHours(*bedtime) > lateBedtimeClockHours {
		for hour := 8; hour <= 10; hour++ {
			curve[hour]--
		}
	}

	if durationMinutes != nil && *durationMinutes < shortSleepMinutes {
		for hour := 16; hour <= 20; hour++ {
			curve[hour]--
		}
	}

	if travelModeEnabled {
		for hour := 8; hour <= 12; hour++ {
			if curve[hour] > travelMorningCapLevel {
				curve[hour] = travelMorningCapLevel
			}
		}
	}

	for hour := CurveStartHour; hour <= CurveEndHour; hour++ {
		curve[hour] = clampInt(curve[hour], energyLevelMin, energyLevelMax)
	}
	return curve
}
