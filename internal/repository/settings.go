package repository

import (
	"context"
	"errors"
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/repository/cache"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"github.com/gotomicro/ego/core/elog"
	"gorm.io/gorm"
)

// SettingsCache 设置缓存的统一抽象，本地缓存和Redis缓存都实现它
type SettingsCache interface {
	Get(ctx context.Context, userID int64) (domain.UserNotificationSettings, error)
	Set(ctx context.Context, settings domain.UserNotificationSettings) error
	Del(ctx context.Context, userID int64) error
}

// SettingsRepository 用户通知设置仓储接口
type SettingsRepository interface {
	// GetByUserID 查询用户通知设置，不存在时返回 errs.ErrSettingsNotFound
	GetByUserID(ctx context.Context, userID int64) (domain.UserNotificationSettings, error)
	// Save 保存用户通知设置并使缓存失效
	Save(ctx context.Context, settings domain.UserNotificationSettings) error
}

type settingsRepository struct {
	d      dao.SettingsDAO
	local  SettingsCache
	redis  SettingsCache
	logger *elog.Component
}

// NewSettingsRepository 创建用户通知设置仓储
func NewSettingsRepository(d dao.SettingsDAO, local, redis SettingsCache) SettingsRepository {
	return &settingsRepository{
		d:      d,
		local:  local,
		redis:  redis,
		logger: elog.DefaultLogger,
	}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (domain.UserNotificationSettings, error) {
	// 本地缓存
	settings, err := r.local.Get(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, cache.ErrKeyNotFound) {
		r.logger.Warn("读取本地缓存失败",
			elog.Int64("userID", userID),
			elog.Any("Error", err),
		)
	}

	// Redis缓存，命中回填本地
	settings, err = r.redis.Get(ctx, userID)
	if err == nil {
		_ = r.local.Set(ctx, settings)
		return settings, nil
	}
	// 未命中继续读库，Redis故障只记日志
	if !errors.Is(err, cache.ErrKeyNotFound) {
		r.logger.Warn("读取Redis缓存失败",
			elog.Int64("userID", userID),
			elog.Any("Error", err),
		)
	}

	// 数据库
	entity, err := r.d.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserNotificationSettings{}, fmt.Errorf("%w: userID = %d", errs.ErrSettingsNotFound, userID)
		}
		return domain.UserNotificationSettings{}, err
	}

	settings = r.toDomain(entity)

	// 回填两级缓存，失败只记日志
	if err := r.redis.Set(ctx, settings); err != nil {
		r.logger.Warn("回填Redis缓存失败",
			elog.Int64("userID", userID),
			elog.Any("Error", err),
		)
	}
	_ = r.local.Set(ctx, settings)

	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.UserNotificationSettings) error {
	if err := r.d.Save(ctx, r.toEntity(settings)); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrSaveSettingsFailed, err)
	}

	// 写库成功后使缓存失效
	if err := r.redis.Del(ctx, settings.UserID); err != nil {
		r.logger.Warn("删除Redis缓存失败",
			elog.Int64("userID", settings.UserID),
			elog.Any("Error", err),
		)
	}
	_ = r.local.Del(ctx, settings.UserID)
	return nil
}

func (r *settingsRepository) toDomain(e dao.UserNotificationSettings) domain.UserNotificationSettings {
	return domain.UserNotificationSettings{
		UserID:                e.UserID,
		EmailEnabled:          e.EmailEnabled,
		WechatEnabled:         e.WechatEnabled,
		SMSEnabled:            e.SmsEnabled,
		TaskNotifications:     e.TaskNotifications,
		ApprovalNotifications: e.ApprovalNotifications,
		AlertNotifications:    e.AlertNotifications,
		IssueNotifications:    e.IssueNotifications,
		ProjectNotifications:  e.ProjectNotifications,
		QuietHoursStart:       e.QuietHoursStart,
		QuietHoursEnd:         e.QuietHoursEnd,
	}
}

func (r *settingsRepository) toEntity(s domain.UserNotificationSettings) dao.UserNotificationSettings {
	return dao.UserNotificationSettings{
		UserID:                s.UserID,
		EmailEnabled:          s.EmailEnabled,
		WechatEnabled:         s.WechatEnabled,
		SmsEnabled:            s.SMSEnabled,
		TaskNotifications:     s.TaskNotifications,
		ApprovalNotifications: s.ApprovalNotifications,
		AlertNotifications:    s.AlertNotifications,
		IssueNotifications:    s.IssueNotifications,
		ProjectNotifications:  s.ProjectNotifications,
		QuietHoursStart:       s.QuietHoursStart,
		QuietHoursEnd:         s.QuietHoursEnd,
	}
}
