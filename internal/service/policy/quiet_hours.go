package policy

import (
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
)

const minutesPerHour = 60

// IsQuietHours 判断now是否落在用户的免打扰时段内
// 未设置、缺少任一边界、格式非法都按"非免打扰"处理，
// 保证配置坏了也不会静默拦截所有通知；两端边界都包含在内
func IsQuietHours(settings *domain.UserNotificationSettings, now time.Time) bool {
	if settings == nil || settings.QuietHoursStart == "" || settings.QuietHoursEnd == "" {
		return false
	}

	start, ok := parseMinuteOfDay(settings.QuietHoursStart)
	if !ok {
		return false
	}
	end, ok := parseMinuteOfDay(settings.QuietHoursEnd)
	if !ok {
		return false
	}

	cur := now.Hour()*minutesPerHour + now.Minute()

	if start <= end {
		// 同一天内的时段
		return cur >= start && cur <= end
	}
	// 跨午夜时段，比如 22:00 - 06:00
	return cur >= start || cur <= end
}

// parseMinuteOfDay 解析"HH:MM"为当天的分钟数
func parseMinuteOfDay(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*minutesPerHour + t.Minute(), true
}
