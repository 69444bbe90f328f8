package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/service/channel"
	"gitee.com/flycash/notification-dispatch/internal/service/dedup"
	"gitee.com/flycash/notification-dispatch/internal/service/policy"
	"gitee.com/flycash/notification-dispatch/internal/service/selector"
	settingssvc "gitee.com/flycash/notification-dispatch/internal/service/settings"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gotomicro/ego/core/elog"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

const (
	// defaultChannelTimeout 单渠道发送超时，慢渠道不能拖住整次调用
	defaultChannelTimeout = 5 * time.Second
	// defaultBatchConcurrency 批量发送的并发上限，避免对渠道方打开过多连接
	defaultBatchConcurrency = 16
)

//go:generate mockgen -source=./dispatcher.go -destination=./mocks/dispatch.mock.go -package=dispatchmocks -typed Dispatcher

// Dispatcher 通知分发编排器
type Dispatcher interface {
	// Send 发送单条通知，走完整的策略管道
	Send(ctx context.Context, notification domain.Notification) (domain.SendOutcome, error)
	// BatchSend 批量发送通知，各条互相独立，不保证顺序
	BatchSend(ctx context.Context, notifications []domain.Notification) ([]domain.SendOutcome, error)
}

// dispatcher 编排器实现
// 管道：去重检测 → 取用户设置 → 免打扰 → 分类开关 → 渠道选择 → 并发分发 → 记录去重 → 聚合
type dispatcher struct {
	dedupSvc    dedup.Service
	settingsSvc settingssvc.Service
	registry    *channel.Registry
	logRepo     repository.DeliveryLogRepository
	logger      *elog.Component

	channelTimeout   time.Duration
	batchConcurrency int

	// 便于在测试里固定时间
	now func() time.Time
}

// NewDispatcher 创建通知分发编排器
func NewDispatcher(
	dedupSvc dedup.Service,
	settingsSvc settingssvc.Service,
	registry *channel.Registry,
	logRepo repository.DeliveryLogRepository,
) Dispatcher {
	return &dispatcher{
		dedupSvc:         dedupSvc,
		settingsSvc:      settingsSvc,
		registry:         registry,
		logRepo:          logRepo,
		logger:           elog.DefaultLogger,
		channelTimeout:   defaultChannelTimeout,
		batchConcurrency: defaultBatchConcurrency,
		now:              time.Now,
	}
}

func (d *dispatcher) Send(ctx context.Context, notification domain.Notification) (domain.SendOutcome, error) {
	if err := notification.Validate(); err != nil {
		return domain.SendOutcome{}, err
	}

	// 去重检测，检测失败按非重复处理，宁可重复也不丢通知
	duplicate, err := d.dedupSvc.CheckDuplicate(ctx, notification)
	if err != nil {
		d.logger.Warn("重复通知检测失败",
			elog.Int64("recipientID", notification.RecipientID),
			elog.String("type", notification.Type),
			elog.Any("Error", err),
		)
		duplicate = false
	}
	if duplicate {
		return domain.SendOutcome{Deduped: true}, nil
	}

	// 设置存储故障按没有设置处理，避免紧急告警因偏好服务故障被吞掉
	settings := d.lookupSettings(ctx, notification.RecipientID)

	// 免打扰时段只投站内信，保证用户回到应用后还能看到；
	// 不消耗去重窗口，免打扰结束后同一通知可以完整发送
	if policy.IsQuietHours(settings, d.now()) {
		d.release(ctx, notification)
		outcome := d.deliver(ctx, notification, []domain.Channel{domain.ChannelSystem})
		outcome.QuietHours = true
		return outcome, nil
	}

	// 分类被用户关闭时同样只投站内信
	if !policy.IsCategoryAllowed(notification, settings) {
		d.release(ctx, notification)
		outcome := d.deliver(ctx, notification, []domain.Channel{domain.ChannelSystem})
		outcome.Disabled = true
		return outcome, nil
	}

	// 渠道选择 → 并发分发
	channels := selector.Select(notification, settings)
	results := d.dispatch(ctx, notification, channels)

	// 部分失败也记录去重，宁可少发不重发
	if err := d.dedupSvc.MarkSent(ctx, notification); err != nil {
		d.logger.Warn("记录去重缓存失败",
			elog.Int64("recipientID", notification.RecipientID),
			elog.Any("Error", err),
		)
	}

	d.recordLogs(ctx, notification, results)
	return aggregate(results), nil
}

func (d *dispatcher) BatchSend(ctx context.Context, notifications []domain.Notification) ([]domain.SendOutcome, error) {
	if len(notifications) == 0 {
		return nil, fmt.Errorf("%w: 通知列表不能为空", errs.ErrInvalidParameter)
	}

	outcomes := make([]domain.SendOutcome, len(notifications))

	var mu sync.Mutex
	var es *multierror.Error

	var eg errgroup.Group
	eg.SetLimit(d.batchConcurrency)
	for i := range notifications {
		eg.Go(func() error {
			outcome, err := d.Send(ctx, notifications[i])
			if err != nil {
				// 单条失败不中断其余请求
				mu.Lock()
				es = multierror.Append(es, fmt.Errorf("第%d条发送失败: %w", i, err))
				mu.Unlock()
				return nil
			}
			outcomes[i] = outcome
			return nil
		})
	}
	_ = eg.Wait()

	return outcomes, es.ErrorOrNil()
}

// deliver 分发到给定渠道并落投递记录，用于免打扰和分类关闭的降级路径
func (d *dispatcher) deliver(ctx context.Context, notification domain.Notification, channels []domain.Channel) domain.SendOutcome {
	results := d.dispatch(ctx, notification, channels)
	d.recordLogs(ctx, notification, results)
	return aggregate(results)
}

// dispatch 并发分发到各渠道，渠道之间互不影响
func (d *dispatcher) dispatch(ctx context.Context, notification domain.Notification, channels []domain.Channel) []domain.ChannelResult {
	var mu sync.Mutex
	results := make([]domain.ChannelResult, 0, len(channels))

	var wg sync.WaitGroup
	for _, ch := range channels {
		handler, ok := d.registry.Handler(ch)
		if !ok {
			// 未注册的渠道跳过，不算失败
			d.logger.Warn("渠道未注册，跳过",
				elog.String("channel", string(ch)),
				elog.String("type", notification.Type),
			)
			continue
		}

		wg.Add(1)
		go func(ch domain.Channel, handler channel.Channel) {
			defer wg.Done()

			result := d.sendOne(ctx, ch, handler, notification)

			mu.Lock()
			results = append(results, result)
			mu.Unlock()
		}(ch, handler)
	}
	wg.Wait()

	return results
}

// sendOne 单渠道发送，渠道内部的panic也转成失败结果
func (d *dispatcher) sendOne(ctx context.Context, ch domain.Channel, handler channel.Channel, notification domain.Notification) (result domain.ChannelResult) {
	result = domain.ChannelResult{Channel: ch}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("渠道内部panic: %v", r)
			d.logger.Error("渠道发送panic",
				elog.String("channel", string(ch)),
				elog.Any("panic", r),
			)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.channelTimeout)
	defer cancel()

	err := handler.Send(sendCtx, notification)
	if err != nil {
		result.ErrorMessage = err.Error()
		d.logger.Warn("渠道发送失败",
			elog.String("channel", string(ch)),
			elog.Int64("recipientID", notification.RecipientID),
			elog.Any("Error", err),
		)
		return result
	}
	result.Success = true
	return result
}

// lookupSettings 查询用户设置，查不到或出错都返回nil表示"没有设置"
func (d *dispatcher) lookupSettings(ctx context.Context, userID int64) *domain.UserNotificationSettings {
	settings, err := d.settingsSvc.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, errs.ErrSettingsNotFound) {
			d.logger.Warn("获取用户通知设置失败",
				elog.Int64("userID", userID),
				elog.Any("Error", err),
			)
		}
		return nil
	}
	return &settings
}

// release 归还去重占位，失败只记日志
func (d *dispatcher) release(ctx context.Context, notification domain.Notification) {
	if err := d.dedupSvc.Release(ctx, notification); err != nil {
		d.logger.Warn("归还去重占位失败",
			elog.Int64("recipientID", notification.RecipientID),
			elog.Any("Error", err),
		)
	}
}

// recordLogs 落投递记录，失败不影响发送结果
func (d *dispatcher) recordLogs(ctx context.Context, notification domain.Notification, results []domain.ChannelResult) {
	logs := slice.Map(results, func(_ int, src domain.ChannelResult) domain.DeliveryLog {
		status := domain.StatusSucceeded
		if !src.Success {
			status = domain.StatusFailed
		}
		return domain.DeliveryLog{
			RecipientID:  notification.RecipientID,
			Type:         notification.Type,
			SourceType:   notification.SourceType,
			SourceID:     notification.SourceID,
			Channel:      src.Channel,
			Status:       status,
			ErrorMessage: src.ErrorMessage,
		}
	})
	if err := d.logRepo.BatchCreate(ctx, logs); err != nil {
		d.logger.Warn("写入投递记录失败",
			elog.Int64("recipientID", notification.RecipientID),
			elog.Any("Error", err),
		)
	}
}

// aggregate 聚合各渠道结果，至少一个渠道成功即整体成功
func aggregate(results []domain.ChannelResult) domain.SendOutcome {
	outcome := domain.SendOutcome{Results: results}
	for _, r := range results {
		if r.Success {
			outcome.ChannelsSent = append(outcome.ChannelsSent, r.Channel)
		} else {
			outcome.ChannelsFailed = append(outcome.ChannelsFailed, r.Channel)
		}
	}
	outcome.Success = len(outcome.ChannelsSent) > 0
	return outcome
}
