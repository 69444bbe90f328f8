package settings

import (
	"context"
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/repository"
)

//go:generate mockgen -source=./settings.go -destination=./mocks/settings.mock.go -package=settingsmocks -typed Service

// Service 用户通知设置服务
type Service interface {
	// GetByUserID 查询用户通知设置，不存在时返回 errs.ErrSettingsNotFound
	GetByUserID(ctx context.Context, userID int64) (domain.UserNotificationSettings, error)
	// Save 保存用户通知设置
	Save(ctx context.Context, settings domain.UserNotificationSettings) error
}

type service struct {
	repo repository.SettingsRepository
}

// NewService 创建用户通知设置服务实例
func NewService(repo repository.SettingsRepository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) GetByUserID(ctx context.Context, userID int64) (domain.UserNotificationSettings, error) {
	// 参数校验
	if userID <= 0 {
		return domain.UserNotificationSettings{}, fmt.Errorf("%w: userID = %d", errs.ErrInvalidParameter, userID)
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Save(ctx context.Context, settings domain.UserNotificationSettings) error {
	// 参数校验
	if settings.UserID <= 0 {
		return fmt.Errorf("%w: userID = %d", errs.ErrInvalidParameter, settings.UserID)
	}
	if err := validateQuietHours(settings.QuietHoursStart); err != nil {
		return err
	}
	if err := validateQuietHours(settings.QuietHoursEnd); err != nil {
		return err
	}
	return s.repo.Save(ctx, settings)
}

// validateQuietHours 免打扰时间必须是"HH:MM"格式或为空
func validateQuietHours(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse("15:04", v); err != nil {
		return fmt.Errorf("%w: 免打扰时间 = %q", errs.ErrInvalidParameter, v)
	}
	return nil
}
