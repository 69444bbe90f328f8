package dedup

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/pkg/hash"
)

// DefaultWindow 默认去重窗口
const DefaultWindow = 300 * time.Second

//go:generate mockgen -source=./dedup.go -destination=./mocks/dedup.mock.go -package=dedupmocks -typed Service

// Service 重复通知检测服务
// 同一指纹在窗口期内只允许投递一次。
// CheckDuplicate 在判定"不重复"的同时原子地占住指纹，
// 两个并发的相同通知只有一个能通过检测；
// 被策略拦截（免打扰、分类关闭）而没有真正投递的调用方，
// 需要调用 Release 归还占位，让去重窗口不被消耗
type Service interface {
	// CheckDuplicate 判定是否为窗口期内的重复通知，非重复时占住指纹
	CheckDuplicate(ctx context.Context, n domain.Notification) (bool, error)
	// MarkSent 投递完成后刷新指纹时间戳，窗口从最近一次投递重新计算
	MarkSent(ctx context.Context, n domain.Notification) error
	// Release 归还CheckDuplicate的占位，用于未真正投递的路径
	Release(ctx context.Context, n domain.Notification) error
}

// Fingerprint 计算通知指纹
// 只由接收人、事件类型和来源实体决定，标题正文不参与
func Fingerprint(n domain.Notification) string {
	key := fmt.Sprintf("%s:%s:%d", n.Type, n.SourceType, n.SourceID)
	return strconv.FormatInt(hash.Hash(n.RecipientID, key), 10)
}
