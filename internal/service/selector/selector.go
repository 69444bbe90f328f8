package selector

import (
	"gitee.com/flycash/notification-dispatch/internal/domain"
)

const (
	urgentLevel = 0 // URGENT
	highLevel   = 1 // HIGH及以上
)

// Select 决定一次通知走哪些渠道
// 显式指定的渠道列表直接生效，不再咨询用户设置；
// 否则以站内信为底，按优先级档位和用户渠道开关扩大广度。
// 返回结果已去重，顺序固定为 SYSTEM、WECHAT、EMAIL、SMS
func Select(n domain.Notification, settings *domain.UserNotificationSettings) []domain.Channel {
	if len(n.Channels) > 0 {
		return dedupe(n.Channels)
	}

	level := n.Priority.Level()

	// 站内信始终包含，保证事件在应用内可见
	channels := []domain.Channel{domain.ChannelSystem}

	if settings != nil {
		if settings.WechatEnabled || level <= urgentLevel {
			channels = append(channels, domain.ChannelWechat)
		}
		if settings.EmailEnabled || level <= highLevel {
			channels = append(channels, domain.ChannelEmail)
		}
		if settings.SMSEnabled || level <= urgentLevel {
			channels = append(channels, domain.ChannelSMS)
		}
		return channels
	}

	// 没有设置时只按优先级扩大
	if level <= urgentLevel {
		channels = append(channels, domain.ChannelWechat, domain.ChannelEmail)
	} else if level <= highLevel {
		channels = append(channels, domain.ChannelEmail)
	}
	return channels
}

// dedupe 去重并保持首次出现的顺序
func dedupe(channels []domain.Channel) []domain.Channel {
	seen := make(map[domain.Channel]struct{}, len(channels))
	out := make([]domain.Channel, 0, len(channels))
	for _, ch := range channels {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
