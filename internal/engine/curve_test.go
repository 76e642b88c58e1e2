package engine

import (
	"testing"

	"github.com/chloe-sy-park/ai-alfredo-sub002/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertCurveBounds(t *testing.T, curve domain.EnergyCurve) {
	t.Helper()
	require.Len(t, curve, CurveEndHour-CurveStartHour+1)
	for hour := CurveStartHour; hour <= CurveEndHour; hour++ {
		level, ok := curve[hour]
		require.True(t, ok, "hour %d missing", hour)
		assert.GreaterOrEqual(t, level, 0)
		assert.LessOrEqual(t, level, 3)
	}
}

func TestGenerateEnergyCurve_BaseProfiles(t *testing.T) {
	for _, state := range []domain.ConditionState{domain.ConditionGood, domain.ConditionOK, domain.ConditionLow} {
		curve := GenerateEnergyCurve(state, nil, nil, false)
		assertCurveBounds(t, curve)
	}

	// good 的每小时不低于 low
	good := GenerateEnergyCurve(domain.ConditionGood, nil, nil, false)
	low := GenerateEnergyCurve(domain.ConditionLow, nil, nil, false)
	for hour := CurveStartHour; hour <= CurveEndHour; hour++ {
		assert.GreaterOrEqual(t, good[hour], low[hour])
	}
}

func TestGenerateEnergyCurve_LateBedtimeLowersMorning(t *testing.T) {
	base := GenerateEnergyCurve(domain.ConditionGood, nil, nil, false)

	lateBed := ts(3, 0) // 睡眠日时钟 9.0，晚于 02:00
	curve := GenerateEnergyCurve(domain.ConditionGood, &lateBed, nil, false)
	assertCurveBounds(t, curve)
	for hour := 8; hour <= 10; hour++ {
		assert.Equal(t, clampInt(base[hour]-1, 0, 3), curve[hour])
	}
	assert.Equal(t, base[11], curve[11])

	// 23:00 入睡不触发
	earlyBed := ts(23, 0)
	curve = GenerateEnergyCurve(domain.ConditionGood, &earlyBed, nil, false)
	assert.Equal(t, base[8], curve[8])
}

func TestGenerateEnergyCurve_ShortSleepLowersEvening(t *testing.T) {
	base := GenerateEnergyCurve(domain.ConditionOK, nil, nil, false)

	short := 300
	curve := GenerateEnergyCurve(domain.ConditionOK, nil, &short, false)
	assertCurveBounds(t, curve)
	for hour := 16; hour <= 20; hour++ {
		assert.Equal(t, clampInt(base[hour]-1, 0, 3), curve[hour])
	}
	assert.Equal(t, base[15], curve[15])
}

func TestGenerateEnergyCurve_TravelModeCapsMorning(t *testing.T) {
	curve := GenerateEnergyCurve(domain.ConditionGood, nil, nil, true)
	assertCurveBounds(t, curve)
	for hour := 8; hour <= 12; hour++ {
		assert.LessOrEqual(t, curve[hour], 2)
	}
	// 封顶只降不升：low 的上午 1 级保持不变
	lowCurve := GenerateEnergyCurve(domain.ConditionLow, nil, nil, true)
	assert.Equal(t, 1, lowCurve[8])
}

func TestGenerateEnergyCurve_AdjustmentsStack(t *testing.T) {
	lateBed := ts(2, 30)
	short := 200
	curve := GenerateEnergyCurve(domain.ConditionLow, &lateBed, &short, true)
	assertCurveBounds(t, curve)
	// low 基线上午 1 级，晚睡降 1 后触底 0
	assert.Equal(t, 0, curve[8])
	// 晚间 0 级继续降也不会为负
	assert.Equal(t, 0, curve[20])
}

func TestGenerateEnergyCurve_UnknownStateFallsBackToOK(t *testing.T) {
	curve := GenerateEnergyCurve(domain.ConditionState("unknown"), nil, nil, false)
	ok := GenerateEnergyCurve(domain.ConditionOK, nil, nil, false)
	assert.Equal(t, ok, curve)
}
