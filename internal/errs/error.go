package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter = errors.New("参数错误")

	ErrSettingsNotFound     = errors.New("用户通知设置不存在")
	ErrSaveSettingsFailed   = errors.New("保存用户通知设置失败")
	ErrCreateMessageFailed  = errors.New("创建站内信失败")
	ErrMessageDuplicate     = errors.New("站内信主键冲突")
	ErrCreateDeliveryLog    = errors.New("创建投递记录失败")
	ErrWebhookNotConfigured = errors.New("webhook地址未配置")
	ErrGatewayNotConfigured = errors.New("渠道网关未配置")
)
