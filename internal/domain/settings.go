package domain

// UserNotificationSettings 用户通知设置
// 渠道开关控制非紧急通知能否走对应渠道；
// 分类开关控制某一类通知是否接收；
// 免打扰时段为"HH:MM"格式，为空表示未设置
type UserNotificationSettings struct {
	UserID int64

	EmailEnabled  bool
	WechatEnabled bool
	SMSEnabled    bool

	TaskNotifications     bool
	ApprovalNotifications bool
	AlertNotifications    bool
	IssueNotifications    bool
	ProjectNotifications  bool

	QuietHoursStart string
	QuietHoursEnd   string
}

// DefaultSettings 新用户的默认设置，全部分类打开，只开启邮件渠道
func DefaultSettings(userID int64) UserNotificationSettings {
	return UserNotificationSettings{
		UserID:                userID,
		EmailEnabled:          true,
		TaskNotifications:     true,
		ApprovalNotifications: true,
		AlertNotifications:    true,
		IssueNotifications:    true,
		ProjectNotifications:  true,
	}
}
