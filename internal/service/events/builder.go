package events

import (
	"fmt"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
)

// 告警级别，来自成本监控模块
const (
	AlertLevelCritical = "CRITICAL"
	AlertLevelWarning  = "WARNING"
)

// TaskAssigned 任务分配事件
func TaskAssigned(recipientID, taskID int64, taskName, assignerName string) domain.Notification {
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeTaskAssigned,
		Category:    domain.CategoryTask,
		Title:       "新任务分配",
		Content:     fmt.Sprintf("%s 给您分配了任务【%s】，请及时处理", assignerName, taskName),
		Priority:    domain.PriorityNormal,
		SourceType:  "task",
		SourceID:    taskID,
		LinkURL:     fmt.Sprintf("/tasks/%d", taskID),
	}
}

// TaskCompleted 任务完成事件，通知任务的创建者
func TaskCompleted(recipientID, taskID int64, taskName, completerName string) domain.Notification {
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeTaskCompleted,
		Category:    domain.CategoryTask,
		Title:       "任务已完成",
		Content:     fmt.Sprintf("%s 已完成任务【%s】", completerName, taskName),
		Priority:    domain.PriorityLow,
		SourceType:  "task",
		SourceID:    taskID,
		LinkURL:     fmt.Sprintf("/tasks/%d", taskID),
	}
}

// ApprovalPending 待审批事件，通知审批人
func ApprovalPending(recipientID, approvalID int64, approvalType, applicantName string) domain.Notification {
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeApprovalPending,
		Category:    domain.CategoryApproval,
		Title:       "待审批提醒",
		Content:     fmt.Sprintf("%s 提交的【%s】等待您审批", applicantName, approvalType),
		Priority:    domain.PriorityHigh,
		SourceType:  "approval",
		SourceID:    approvalID,
		LinkURL:     fmt.Sprintf("/approvals/%d", approvalID),
	}
}

// ApprovalResult 审批结果事件，通知申请人
func ApprovalResult(recipientID, approvalID int64, approvalType string, approved bool, comment string) domain.Notification {
	verdict := "已通过"
	if !approved {
		verdict = "已驳回"
	}
	content := fmt.Sprintf("您提交的【%s】%s", approvalType, verdict)
	if comment != "" {
		content += fmt.Sprintf("，审批意见：%s", comment)
	}
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeApprovalResult,
		Category:    domain.CategoryApproval,
		Title:       fmt.Sprintf("审批%s", verdict),
		Content:     content,
		Priority:    domain.PriorityNormal,
		SourceType:  "approval",
		SourceID:    approvalID,
		LinkURL:     fmt.Sprintf("/approvals/%d", approvalID),
	}
}

// CostAlert 成本预警事件，优先级随告警级别
func CostAlert(recipientID, alertID int64, projectName, level, message string) domain.Notification {
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeCostAlert,
		Category:    domain.CategoryAlert,
		Title:       fmt.Sprintf("成本预警【%s】", level),
		Content:     fmt.Sprintf("项目【%s】触发成本预警：%s", projectName, message),
		Priority:    alertPriority(level),
		SourceType:  "cost_alert",
		SourceID:    alertID,
		LinkURL:     fmt.Sprintf("/cost/alerts/%d", alertID),
	}
}

// ECNSubmitted 工程变更单提交事件
func ECNSubmitted(recipientID, ecnID int64, ecnNo, submitterName string) domain.Notification {
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeECNSubmitted,
		Category:    domain.CategoryECN,
		Title:       "工程变更通知",
		Content:     fmt.Sprintf("%s 提交了工程变更单【%s】，请关注相关影响", submitterName, ecnNo),
		Priority:    domain.PriorityHigh,
		SourceType:  "ecn",
		SourceID:    ecnID,
		LinkURL:     fmt.Sprintf("/ecn/%d", ecnID),
	}
}

// DeadlineReminder 截止时间提醒事件
func DeadlineReminder(recipientID, taskID int64, taskName string, deadline time.Time) domain.Notification {
	return domain.Notification{
		RecipientID: recipientID,
		Type:        domain.TypeDeadlineReminder,
		Category:    domain.CategoryDeadline,
		Title:       "截止时间提醒",
		Content:     fmt.Sprintf("任务【%s】将于 %s 截止，请尽快处理", taskName, deadline.Format("2006-01-02 15:04")),
		Priority:    domain.PriorityHigh,
		SourceType:  "task",
		SourceID:    taskID,
		LinkURL:     fmt.Sprintf("/tasks/%d", taskID),
	}
}

// alertPriority 告警级别到通知优先级的映射
func alertPriority(level string) domain.Priority {
	switch level {
	case AlertLevelCritical:
		return domain.PriorityUrgent
	case AlertLevelWarning:
		return domain.PriorityHigh
	default:
		return domain.PriorityNormal
	}
}
