package domain

import "time"

// RawSignalSet 单次推算的原始信号输入（全部可空）
// 入睡候选：最后一次 App 会话结束、最后一次通知响应、最后一次设备活跃
// 醒来候选：第一次 App 会话开始、第一次通知响应、第一次设备活跃
type RawSignalSet struct {
	LastAppSessionEnd         *time.Time `json:"last_app_session_end"`
	LastNotificationResponse  *time.Time `json:"last_notification_response"`
	LastDeviceActive          *time.Time `json:"last_device_active"`
	FirstAppSessionStart      *time.Time `json:"first_app_session_start"`
	FirstNotificationResponse *time.Time `json:"first_notification_response"`
	FirstDeviceActive         *time.Time `json:"first_device_active"`
}

// NonNullCount 非空信号字段数量（0-6）
func (s RawSignalSet) NonNullCount() int {
	count := 0
	for _, ts := range []*time.Time{
		s.LastAppSessionEnd, s.LastNotificationResponse, s.LastDeviceActive,
		s.FirstAppSessionStart, s.FirstNotificationResponse, s.FirstDeviceActive,
	} {
		if ts != nil {
			count++
		}
	}
	return count
}

// CheckinTag 用户打卡标签（固定词表）
type CheckinTag string

const (
	TagPlay   CheckinTag = "play"
	TagRest   CheckinTag = "rest"
	TagTravel CheckinTag = "travel"
	TagSocial CheckinTag = "social"
	TagOther  CheckinTag = "other"
)

// CheckinTagSet 某日的打卡标签集合
type CheckinTagSet []CheckinTag

// Contains 集合是否包含指定标签
func (s CheckinTagSet) Contains(tag CheckinTag) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// CalendarDensitySummary 日历负载摘要（来自日历聚合协作方）
type CalendarDensitySummary struct {
	BusyHours    *float64 `json:"busy_hours"`    // 可空：无日历数据
	MeetingCount *int     `json:"meeting_count"` // 可空
}

// TravelSession 旅行模式状态（来自旅行模式协作方）
type TravelSession struct {
	TravelModeEnabled bool `json:"travel_mode_enabled"`
}
