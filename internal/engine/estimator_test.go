package engine

import (
	"testing"
	"time"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tp(t time.Time) *time.Time { return &t }

func ts(hour, min int) time.Time {
	// 固定在 2026-03-10 前后，跨午夜时落到次日
	day := 10
	if hour < 18 {
		day = 11
	}
	return time.Date(2026, 3, day, hour, min, 0, 0, time.UTC)
}

func TestEstimateSleepWindow_AllSignalsMissing(t *testing.T) {
	record := EstimateSleepWindow("user-1", "2026-03-11", domain.RawSignalSet{}, nil)

	assert.Nil(t, record.Bedtime)
	assert.Nil(t, record.Waketime)
	assert.Nil(t, record.DurationMinutes)
	assert.Equal(t, 1, record.ConfidenceStars)
	assert.Equal(t, domain.SleepSourceEstimated, record.Source)
	assert.NotEmpty(t, record.RawSignalSnapshot)
}

func TestEstimateSleepWindow_BothCandidatesPresent(t *testing.T) {
	signals := domain.RawSignalSet{
		LastAppSessionEnd:    tp(ts(22, 40)),
		LastDeviceActive:     tp(ts(23, 10)), // 最晚的睡前信号
		FirstAppSessionStart: tp(ts(7, 5)),   // 最早的醒后信号
		FirstDeviceActive:    tp(ts(7, 30)),
	}

	record := EstimateSleepWindow("user-1", "2026-03-11", signals, nil)

	require.NotNil(t, record.Bedtime)
	require.NotNil(t, record.Waketime)
	require.NotNil(t, record.DurationMinutes)
	assert.Equal(t, ts(23, 10), *record.Bedtime)
	assert.Equal(t, ts(7, 5), *record.Waketime)
	assert.Equal(t, 475, *record.DurationMinutes)
	// 两侧真实 +2、非空 4/6 +1、设备信号被采用 +1 → 4 分 → 3 星
	assert.Equal(t, 3, record.ConfidenceStars)
}

func TestEstimateSleepWindow_OnlyBedtime_SynthesizesWaketime(t *testing.T) {
	signals := domain.RawSignalSet{
		LastNotificationResponse: tp(ts(23, 30)),
	}

	record := EstimateSleepWindow("user-1", "2026-03-11", signals, nil)

	require.NotNil(t, record.DurationMinutes)
	assert.Equal(t, DefaultSleepMinutes, *record.DurationMinutes)
	assert.Equal(t, ts(23, 30).Add(420*time.Minute), *record.Waketime)
	// 只有入睡侧为真实信号 → 1 分 → 1 星
	assert.Equal(t, 1, record.ConfidenceStars)
}

func TestEstimateSleepWindow_OnlyWaketime_SynthesizesBedtime(t *testing.T) {
	signals := domain.RawSignalSet{
		FirstDeviceActive: tp(ts(6, 50)),
	}

	record := EstimateSleepWindow("user-1", "2026-03-11", signals, nil)

	require.NotNil(t, record.Bedtime)
	assert.Equal(t, ts(6, 50).Add(-420*time.Minute), *record.Bedtime)
	assert.Equal(t, DefaultSleepMinutes, *record.DurationMinutes)
	// 醒来侧真实 +1、设备信号 +1 → 2 分 → 2 星
	assert.Equal(t, 2, record.ConfidenceStars)
}

func TestEstimateSleepWindow_GuardrailShortDuration(t *testing.T) {
	signals := domain.RawSignalSet{
		LastAppSessionEnd:    tp(ts(5, 30)), // 入睡晚于醒来，时长为负
		FirstAppSessionStart: tp(ts(5, 0)),
	}

	record := EstimateSleepWindow("user-1", "2026-03-11", signals, nil)

	require.NotNil(t, record.DurationMinutes)
	assert.Equal(t, 360, *record.DurationMinutes)
	assert.Equal(t, ts(5, 0).Add(-360*time.Minute), *record.Bedtime)
	assert.Equal(t, ts(5, 0), *record.Waketime)
}

func TestEstimateSleepWindow_GuardrailLongDuration(t *testing.T) {
	signals := domain.RawSignalSet{
		LastAppSessionEnd:    tp(ts(20, 0)),
		FirstAppSessionStart: tp(ts(13, 0)), // 17 小时
	}

	record := EstimateSleepWindow("user-1", "2026-03-11", signals, nil)

	require.NotNil(t, record.DurationMinutes)
	assert.Equal(t, 480, *record.DurationMinutes)
	assert.Equal(t, ts(20, 0), *record.Bedtime)
	assert.Equal(t, ts(20, 0).Add(480*time.Minute), *record.Waketime)
}

func TestEstimateSleepWindow_DurationAlwaysWithinBounds(t *testing.T) {
	// 任意单侧/双侧组合下时长都应落在 [180, 840]
	combos := []domain.RawSignalSet{
		{LastAppSessionEnd: tp(ts(23, 0))},
		{FirstAppSessionStart: tp(ts(7, 0))},
		{LastAppSessionEnd: tp(ts(23, 0)), FirstAppSessionStart: tp(ts(23, 30))},
		{LastDeviceActive: tp(ts(21, 0)), FirstNotificationResponse: tp(ts(12, 0))},
		{LastAppSessionEnd: tp(ts(23, 0)), FirstAppSessionStart: tp(ts(7, 0))},
	}
	for _, signals := range combos {
		record := EstimateSleepWindow("user-1", "2026-03-11", signals, nil)
		require.NotNil(t, record.DurationMinutes)
		assert.GreaterOrEqual(t, *record.DurationMinutes, 180)
		assert.LessOrEqual(t, *record.DurationMinutes, 840)
	}
}

func TestEstimateSleepWindow_MedianCalibrationBonus(t *testing.T) {
	// 最近 7 天入睡/醒来都很规律的用户
	var recent []domain.SleepRecord
	for day := 3; day <= 9; day++ {
		bed := time.Date(2026, 3, day, 23, 0, 0, 0, time.UTC)
		wake := time.Date(2026, 3, day+1, 7, 0, 0, 0, time.UTC)
		recent = append(recent, domain.SleepRecord{Bedtime: &bed, Waketime: &wake})
	}

	signals := domain.RawSignalSet{
		LastAppSessionEnd:    tp(ts(23, 10)),
		FirstAppSessionStart: tp(ts(7, 5)),
	}

	record := EstimateSleepWindow("user-1", "2026-03-11", signals, recent)

	// 两侧真实 +2、两侧都在中位数 ±1.5h 内 +2 → 4 分 → 3 星
	assert.Equal(t, 3, record.ConfidenceStars)

	// 历史不足 3 条时校准不参与
	record = EstimateSleepWindow("user-1", "2026-03-11", signals, recent[:2])
	assert.Equal(t, 2, record.ConfidenceStars)
}

func TestSleepDayClockHours(t *testing.T) {
	assert.InDelta(t, 5.0, sleepDayClockHours(ts(23, 0)), 1e-9)
	assert.InDelta(t, 6.5, sleepDayClockHours(ts(0, 30)), 1e-9)
	assert.InDelta(t, 8.0, sleepDayClockHours(ts(2, 0)), 1e-9)
	assert.InDelta(t, 0.0, sleepDayClockHours(ts(18, 0)), 1e-9)
	assert.InDelta(t, 1.0, clockDistanceHours(23.5, 0.5), 1e-9)
}
