package dao

import (
	"context"
	"time"

	"github.com/ego-component/egorm"
	"gorm.io/gorm/clause"
)

// UserNotificationSettings 用户通知设置表
type UserNotificationSettings struct {
	UserID        int64 `gorm:"primaryKey;type:BIGINT;comment:'用户ID'"`
	EmailEnabled  bool  `gorm:"NOT NULL;DEFAULT:0;comment:'邮件渠道开关'"`
	WechatEnabled bool  `gorm:"NOT NULL;DEFAULT:0;comment:'企业微信渠道开关'"`
	SmsEnabled    bool  `gorm:"NOT NULL;DEFAULT:0;comment:'短信渠道开关'"`

	TaskNotifications     bool `gorm:"NOT NULL;DEFAULT:1;comment:'任务类通知开关'"`
	ApprovalNotifications bool `gorm:"NOT NULL;DEFAULT:1;comment:'审批类通知开关'"`
	AlertNotifications    bool `gorm:"NOT NULL;DEFAULT:1;comment:'告警类通知开关'"`
	IssueNotifications    bool `gorm:"NOT NULL;DEFAULT:1;comment:'问题类通知开关'"`
	ProjectNotifications  bool `gorm:"NOT NULL;DEFAULT:1;comment:'项目类通知开关'"`

	QuietHoursStart string `gorm:"type:VARCHAR(5);comment:'免打扰开始时间 HH:MM'"`
	QuietHoursEnd   string `gorm:"type:VARCHAR(5);comment:'免打扰结束时间 HH:MM'"`

	Ctime int64
	Utime int64
}

// TableName 重命名表
func (UserNotificationSettings) TableName() string {
	return "user_notification_settings"
}

type SettingsDAO interface {
	// GetByUserID 根据用户ID查询通知设置
	GetByUserID(ctx context.Context, userID int64) (UserNotificationSettings, error)
	// Save 保存通知设置，不存在时创建，存在时整体覆盖
	Save(ctx context.Context, data UserNotificationSettings) error
}

type settingsDAO struct {
	db *egorm.Component
}

// NewSettingsDAO 创建通知设置DAO实例
func NewSettingsDAO(db *egorm.Component) SettingsDAO {
	return &settingsDAO{
		db: db,
	}
}

func (d *settingsDAO) GetByUserID(ctx context.Context, userID int64) (UserNotificationSettings, error) {
	var settings UserNotificationSettings
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).Take(&settings).Error
	if err != nil {
		return UserNotificationSettings{}, err
	}
	return settings, nil
}

func (d *settingsDAO) Save(ctx context.Context, data UserNotificationSettings) error {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now

	// 主键冲突时覆盖除创建时间外的所有列
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		DoUpdates: clause.AssignmentColumns([]string{
			"email_enabled", "wechat_enabled", "sms_enabled",
			"task_notifications", "approval_notifications", "alert_notifications",
			"issue_notifications", "project_notifications",
			"quiet_hours_start", "quiet_hours_end", "utime",
		}),
	}).Create(&data).Error
}
