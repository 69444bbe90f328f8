package domain

import (
	"fmt"

	"gitee.com/flycash/notification-dispatch/internal/errs"
)

// Channel 通知渠道
type Channel string

const (
	ChannelSystem  Channel = "SYSTEM"  // 站内信
	ChannelEmail   Channel = "EMAIL"   // 邮件
	ChannelWechat  Channel = "WECHAT"  // 企业微信
	ChannelSMS     Channel = "SMS"     // 短信
	ChannelWebhook Channel = "WEBHOOK" // Webhook回调
)

// Priority 通知优先级
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Level 返回优先级档位，数字越小优先级越高
// URGENT=0, HIGH=1, NORMAL=2, LOW=3，非法取值按NORMAL处理
func (p Priority) Level() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Category 通知分类，用于按类别退订
type Category string

const (
	CategoryTask     Category = "task"
	CategoryApproval Category = "approval"
	CategoryAlert    Category = "alert"
	CategoryECN      Category = "ecn"
	CategoryDeadline Category = "deadline"
	CategoryIssue    Category = "issue"
	CategoryProject  Category = "project"
	CategoryGeneral  Category = "general"
)

// 通知事件类型
const (
	TypeTaskAssigned     = "TASK_ASSIGNED"
	TypeTaskCompleted    = "TASK_COMPLETED"
	TypeApprovalPending  = "APPROVAL_PENDING"
	TypeApprovalResult   = "APPROVAL_RESULT"
	TypeCostAlert        = "COST_ALERT"
	TypeECNSubmitted     = "ECN_SUBMITTED"
	TypeDeadlineReminder = "DEADLINE_REMINDER"
)

// Notification 一次通知意图的领域模型
type Notification struct {
	RecipientID int64             // 接收人用户ID
	Type        string            // 事件类型，比如 TASK_ASSIGNED
	Category    Category          // 分类，用于按类别退订
	Title       string            // 标题
	Content     string            // 正文
	Priority    Priority          // 优先级，无显式渠道时决定渠道广度
	SourceType  string            // 来源业务实体类型
	SourceID    int64             // 来源业务实体ID
	Channels    []Channel         // 显式指定的渠道列表，非空时绕过优先级选择
	ForceSend   bool              // 强制发送，绕过重复检测
	LinkURL     string            // 跳转链接
	ExtraData   map[string]string // 透传给渠道的附加数据
}

func (n *Notification) Validate() error {
	if n.RecipientID <= 0 {
		return fmt.Errorf("%w: RecipientID = %d", errs.ErrInvalidParameter, n.RecipientID)
	}

	if n.Type == "" {
		return fmt.Errorf("%w: Type = %q", errs.ErrInvalidParameter, n.Type)
	}

	return nil
}

// SendStatus 单渠道发送状态
type SendStatus string

const (
	StatusSucceeded SendStatus = "SUCCEEDED"
	StatusFailed    SendStatus = "FAILED"
)

// ChannelResult 单个渠道的发送结果，创建后不再修改
type ChannelResult struct {
	Channel      Channel
	Success      bool
	ErrorMessage string
}

// SendOutcome 一次通知的整体结果
// Deduped/QuietHours/Disabled 三个标记互斥，表示被哪条策略拦截
type SendOutcome struct {
	Success        bool
	Deduped        bool // 重复通知被抑制
	QuietHours     bool // 免打扰时段，仅投递站内信
	Disabled       bool // 分类被用户关闭，仅投递站内信
	ChannelsSent   []Channel
	ChannelsFailed []Channel
	Results        []ChannelResult
}
