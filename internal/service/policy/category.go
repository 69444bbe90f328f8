package policy

import (
	"gitee.com/flycash/notification-dispatch/internal/domain"
)

// IsCategoryAllowed 判断用户是否接收该分类的通知
// 强制发送始终放行；没有设置时放行；
// 未知分类放行，避免设置表还没建模的新事件类型被误拦
func IsCategoryAllowed(n domain.Notification, settings *domain.UserNotificationSettings) bool {
	if n.ForceSend {
		return true
	}
	if settings == nil {
		return true
	}

	switch n.Category {
	case domain.CategoryTask:
		return settings.TaskNotifications
	case domain.CategoryApproval:
		return settings.ApprovalNotifications
	case domain.CategoryAlert:
		return settings.AlertNotifications
	case domain.CategoryIssue:
		return settings.IssueNotifications
	case domain.CategoryProject:
		return settings.ProjectNotifications
	default:
		return true
	}
}
