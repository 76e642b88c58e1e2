package engine

import (
	"math"
	"sort"
	"time"
)

// 入睡时刻的分段、7 天中位数校准和能量曲线的"过晚入睡"判断
// 统一使用"睡眠日时钟"：自 18:00 起经过的小时数（模 24）。
// 这样 23:10 为 5.17，00:30 为 6.5，02:00 为 8.0，跨午夜不会回绕。
const sleepDayAnchorHour = 18.0

// sleepDayClockHours 将时刻换算为睡眠日时钟上的小时数 [0, 24)
func sleepDayClockHours(t time.Time) float64 {
	h := float64(t.Hour()) + float64(t.Minute())/60.0 + float64(t.Second())/3600.0
	return math.Mod(h-sleepDayAnchorHour+24.0, 24.0)
}

// clockDistanceHours 两个时钟值之间的最短环形距离
func clockDistanceHours(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > 12.0 {
		d = 24.0 - d
	}
	return d
}

// medianClockHours 时钟值的中位数（偶数个取下中位），输入为空时返回 false
func medianClockHours(hours []float64) (float64, bool) {
	if len(hours) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(hours))
	copy(sorted, hours)
	sort.Float64s(sorted)
	return sorted[(len(sorted)-1)/2], true
}

// clampInt 将整数夹在 [min, max] 内
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
