package engine

import (
	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"
)

// 状态评分参数：三个分量叠加在基准分 50 上，分段表全部为固定常量
const (
	baseScore = 50

	sleepComponentMin = -30
	sleepComponentMax = 30
	checkinComponentMin = -12
	checkinComponentMax = 12
	calendarComponentMin = -8
	calendarComponentMax = 8

	stateGoodThreshold = 70
	stateOKThreshold   = 45
)

// durationBand 睡眠时长分段
// inclusive=false 表示上界为开区间（严格小于），true 表示含上界
type durationBand struct {
	maxMinutes int
	inclusive  bool
	score      int
}

var durationBands = []durationBand{
	{300, false, -20}, // < 5h
	{360, false, -12}, // < 6h
	{420, false, -5},  // < 7h
	{540, true, 12},   // ≤ 9h，7-9h 理想区间
	{600, true, 6},    // ≤ 10h
	{720, true, 0},    // ≤ 12h
}

const durationOverlongScore = -6

// timingBand 入睡时刻分段（睡眠日时钟，自 18:00 起算）
type timingBand struct {
	maxClockHours float64
	score         int
}

var timingBands = []timingBand{
	{6.5, 3},  // ≤ 00:30
	{8.0, 0},  // ≤ 02:00
	{9.5, -4}, // ≤ 03:30
}

const timingVeryLateScore = -8

// 打卡标签的基础分
var tagScores = map[domain.CheckinTag]int{
	domain.TagPlay:   3,
	domain.TagRest:   6,
	domain.TagTravel: -2,
	domain.TagSocial: -1,
	domain.TagOther:  0,
}

// ScoreCondition 将睡眠记录、打卡标签、日历负载合成为当日状态
// 纯函数：相同输入恒定产出相同结果，可随时重算。
func ScoreCondition(sleep *domain.SleepRecord, tags domain.CheckinTagSet, calendar domain.CalendarDensitySummary) (domain.ConditionState, int, domain.ConditionDrivers) {
	drivers := domain.ConditionDrivers{
		Tags:         tags,
		BusyHours:    calendar.BusyHours,
		MeetingCount: calendar.MeetingCount,
	}

	// 睡眠分量
	if sleep != nil && sleep.Bedtime != nil && sleep.DurationMinutes != nil {
		clockHours := sleepDayClockHours(*sleep.Bedtime)
		drivers.DurationMinutes = sleep.DurationMinutes
		drivers.ConfidenceStars = sleep.ConfidenceStars
		drivers.BedtimeClockHours = &clockHours

		drivers.DurationScore = durationScore(*sleep.DurationMinutes)
		drivers.TimingScore = timingScore(clockHours)
		drivers.ConfidenceScore = confidenceScore(sleep.ConfidenceStars)
		drivers.SleepComponent = clampInt(
			drivers.DurationScore+drivers.TimingScore+drivers.ConfidenceScore,
			sleepComponentMin, sleepComponentMax,
		)
	}

	// 打卡分量
	drivers.CheckinComponent = clampInt(checkinScore(tags), checkinComponentMin, checkinComponentMax)

	// 日历分量
	drivers.CalendarComponent = clampInt(calendarScore(calendar), calendarComponentMin, calendarComponentMax)

	score := clampInt(
		baseScore+drivers.SleepComponent+drivers.CheckinComponent+drivers.CalendarComponent,
		0, 100,
	)

	state := domain.ConditionLow
	switch {
	case score >= stateGoodThreshold:
		state = domain.ConditionGood
	case score >= stateOKThreshold:
		state = domain.ConditionOK
	}

	return state, score, drivers
}

func durationScore(minutes int) int {
	for _, band := range durationBands {
		if minutes < band.maxMinutes || (band.inclusive && minutes == band.maxMinutes) {
			return band.score
		}
	}
	return durationOverlongScore
}

func timingScore(clockHours float64) int {
	for _, band := range timingBands {
		if clockHours <= band.maxClockHours {
			return band.score
		}
	}
	return timingVeryLateScore
}

func confidenceScore(stars int) int {
	switch stars {
	case 3:
		return 2
	case 2:
		return 1
	default:
		return 0
	}
}

func checkinScore(tags domain.CheckinTagSet) int {
	total := 0
	for _, tag := range tags {
		total += tagScores[tag]
	}
	// 多标签且包含休息：额外加分
	if len(tags) >= 2 && tags.Contains(domain.TagRest) {
		total += 2
	}
	// 旅行叠加社交：额外减分
	if tags.Contains(domain.TagTravel) && tags.Contains(domain.TagSocial) {
		total -= 2
	}
	return total
}

func calendarScore(calendar domain.CalendarDensitySummary) int {
	if calendar.BusyHours == nil {
		return 0
	}
	score := 0
	switch busy := *calendar.BusyHours; {
	case busy >= 7:
		score = -6
	case busy >= 5:
		score = -3
	case busy >= 3:
		score = 0
	default:
		score = 2
	}
	if calendar.MeetingCount != nil && *calendar.MeetingCount >= 6 {
		score -= 2
	}
	return score
}
