package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/service/channel"
	"gitee.com/flycash/notification-dispatch/internal/service/dedup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSettingsService 内存设置服务
type fakeSettingsService struct {
	settings map[int64]domain.UserNotificationSettings
	err      error
}

func (f *fakeSettingsService) GetByUserID(_ context.Context, userID int64) (domain.UserNotificationSettings, error) {
	if f.err != nil {
		return domain.UserNotificationSettings{}, f.err
	}
	s, ok := f.settings[userID]
	if !ok {
		return domain.UserNotificationSettings{}, fmt.Errorf("%w: userID = %d", errs.ErrSettingsNotFound, userID)
	}
	return s, nil
}

func (f *fakeSettingsService) Save(_ context.Context, s domain.UserNotificationSettings) error {
	if f.settings == nil {
		f.settings = make(map[int64]domain.UserNotificationSettings)
	}
	f.settings[s.UserID] = s
	return nil
}

// fakeLogRepo 内存投递记录仓储
type fakeLogRepo struct {
	mu   sync.Mutex
	logs []domain.DeliveryLog
}

func (f *fakeLogRepo) BatchCreate(_ context.Context, logs []domain.DeliveryLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logs...)
	return nil
}

func (f *fakeLogRepo) DeleteBefore(_ context.Context, _ int64) (int64, error) {
	return 0, nil
}

func (f *fakeLogRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.logs)
}

// fakeChannel 可控的渠道实现
type fakeChannel struct {
	mu    sync.Mutex
	calls int
	err   error
	panic bool
}

func (f *fakeChannel) Send(_ context.Context, _ domain.Notification) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panic {
		panic("渠道内部错误")
	}
	return f.err
}

func (f *fakeChannel) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	dispatcher *dispatcher
	settings   *fakeSettingsService
	logs       *fakeLogRepo
	system     *fakeChannel
	email      *fakeChannel
	wechat     *fakeChannel
	sms        *fakeChannel
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		settings: &fakeSettingsService{settings: make(map[int64]domain.UserNotificationSettings)},
		logs:     &fakeLogRepo{},
		system:   &fakeChannel{},
		email:    &fakeChannel{},
		wechat:   &fakeChannel{},
		sms:      &fakeChannel{},
	}
	registry := channel.NewRegistry(map[domain.Channel]channel.Channel{
		domain.ChannelSystem: env.system,
		domain.ChannelEmail:  env.email,
		domain.ChannelWechat: env.wechat,
		domain.ChannelSMS:    env.sms,
	})
	d := NewDispatcher(dedup.NewLocalService(dedup.DefaultWindow), env.settings, registry, env.logs)
	env.dispatcher = d.(*dispatcher)
	return env
}

func taskNotification() domain.Notification {
	return domain.Notification{
		RecipientID: 1,
		Type:        domain.TypeTaskAssigned,
		Category:    domain.CategoryTask,
		Title:       "新任务",
		Content:     "您有一个新任务待处理",
		Priority:    domain.PriorityNormal,
		SourceType:  "task",
		SourceID:    100,
	}
}

func TestSendEndToEnd(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	// 第一次发送：无设置、普通优先级，只走站内信
	outcome, err := env.dispatcher.Send(ctx, taskNotification())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.False(t, outcome.Deduped)
	assert.Equal(t, []domain.Channel{domain.ChannelSystem}, outcome.ChannelsSent)
	assert.Empty(t, outcome.ChannelsFailed)
	assert.Equal(t, 1, env.system.callCount())
	assert.Equal(t, 0, env.email.callCount())

	// 立即重发同一指纹：被去重，渠道不再被调用
	outcome, err = env.dispatcher.Send(ctx, taskNotification())
	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.True(t, outcome.Deduped)
	assert.Empty(t, outcome.ChannelsSent)
	assert.Equal(t, 1, env.system.callCount())
}

func TestSendInvalidNotification(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.dispatcher.Send(context.Background(), domain.Notification{})
	assert.True(t, errors.Is(err, errs.ErrInvalidParameter))
}

func TestSendForceSendBypassesDedup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.dispatcher.Send(ctx, taskNotification())
	require.NoError(t, err)

	// 同一指纹强制发送不被去重
	forced := taskNotification()
	forced.ForceSend = true
	outcome, err := env.dispatcher.Send(ctx, forced)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.False(t, outcome.Deduped)
	assert.Equal(t, 2, env.system.callCount())
}

func TestSendPartialFailureIsolation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.email.err = errors.New("SMTP连接被拒绝")

	n := taskNotification()
	n.Channels = []domain.Channel{domain.ChannelSystem, domain.ChannelEmail, domain.ChannelSMS}

	outcome, err := env.dispatcher.Send(context.Background(), n)
	require.NoError(t, err)

	// 邮件失败不影响其他渠道，整体仍算成功
	assert.True(t, outcome.Success)
	assert.ElementsMatch(t, []domain.Channel{domain.ChannelSystem, domain.ChannelSMS}, outcome.ChannelsSent)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail}, outcome.ChannelsFailed)
	assert.Equal(t, 1, env.sms.callCount())

	// 失败结果里带上了错误信息
	var emailResult domain.ChannelResult
	for _, r := range outcome.Results {
		if r.Channel == domain.ChannelEmail {
			emailResult = r
		}
	}
	assert.Contains(t, emailResult.ErrorMessage, "SMTP连接被拒绝")
}

func TestSendChannelPanicIsolation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.email.panic = true

	n := taskNotification()
	n.Channels = []domain.Channel{domain.ChannelSystem, domain.ChannelEmail}

	outcome, err := env.dispatcher.Send(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, []domain.Channel{domain.ChannelEmail}, outcome.ChannelsFailed)
}

func TestSendUnknownChannelSkipped(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	n := taskNotification()
	n.Channels = []domain.Channel{domain.ChannelSystem, domain.ChannelWebhook}

	// WEBHOOK未注册：跳过且不算失败
	outcome, err := env.dispatcher.Send(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, []domain.Channel{domain.ChannelSystem}, outcome.ChannelsSent)
	assert.Empty(t, outcome.ChannelsFailed)
}

func TestSendQuietHours(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.settings.Save(ctx, domain.UserNotificationSettings{
		UserID:            1,
		EmailEnabled:      true,
		TaskNotifications: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "06:00",
	}))

	// 固定在凌晨3点，处于免打扰时段
	env.dispatcher.now = func() time.Time {
		return time.Date(2025, 6, 15, 3, 0, 0, 0, time.Local)
	}

	outcome, err := env.dispatcher.Send(ctx, taskNotification())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.QuietHours)
	assert.Equal(t, []domain.Channel{domain.ChannelSystem}, outcome.ChannelsSent)
	assert.Equal(t, 0, env.email.callCount())

	// 免打扰不消耗去重窗口：时段结束后同一通知可以完整发送
	env.dispatcher.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	}
	outcome, err = env.dispatcher.Send(ctx, taskNotification())
	require.NoError(t, err)
	assert.False(t, outcome.Deduped)
	assert.True(t, outcome.Success)
	assert.False(t, outcome.QuietHours)
	assert.Equal(t, 1, env.email.callCount())
}

func TestSendCategoryDisabled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.settings.Save(ctx, domain.UserNotificationSettings{
		UserID:             1,
		EmailEnabled:       true,
		AlertNotifications: true,
		// TaskNotifications 关闭
	}))

	outcome, err := env.dispatcher.Send(ctx, taskNotification())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.Disabled)
	assert.Equal(t, []domain.Channel{domain.ChannelSystem}, outcome.ChannelsSent)
	assert.Equal(t, 0, env.email.callCount())

	// 强制发送无视分类开关，走完整渠道选择
	forced := taskNotification()
	forced.ForceSend = true
	outcome, err = env.dispatcher.Send(ctx, forced)
	require.NoError(t, err)
	assert.False(t, outcome.Disabled)
	assert.Equal(t, 1, env.email.callCount())
}

func TestSendSettingsFetchFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.settings.err = errors.New("偏好服务不可用")

	// 设置存储故障按没有设置处理，紧急通知仍然全渠道发出
	n := taskNotification()
	n.Priority = domain.PriorityUrgent

	outcome, err := env.dispatcher.Send(context.Background(), n)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.ElementsMatch(t, []domain.Channel{
		domain.ChannelSystem, domain.ChannelWechat, domain.ChannelEmail,
	}, outcome.ChannelsSent)
}

func TestSendRecordsDeliveryLogs(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.email.err = errors.New("网关超时")

	n := taskNotification()
	n.Channels = []domain.Channel{domain.ChannelSystem, domain.ChannelEmail}

	_, err := env.dispatcher.Send(context.Background(), n)
	require.NoError(t, err)

	// 每次渠道尝试一条投递记录，成功失败都记
	assert.Equal(t, 2, env.logs.count())
}

func TestBatchSend(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	notifications := make([]domain.Notification, 0, 3)
	for i := 0; i < 3; i++ {
		n := taskNotification()
		n.SourceID = int64(200 + i)
		notifications = append(notifications, n)
	}

	outcomes, err := env.dispatcher.BatchSend(context.Background(), notifications)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, outcome := range outcomes {
		assert.True(t, outcome.Success)
	}
	assert.Equal(t, 3, env.system.callCount())
}

func TestBatchSendEmpty(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.dispatcher.BatchSend(context.Background(), nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidParameter))
}

func TestBatchSendPartialInvalid(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	valid := taskNotification()
	invalid := domain.Notification{}

	outcomes, err := env.dispatcher.BatchSend(context.Background(), []domain.Notification{valid, invalid})
	// 非法请求以聚合错误返回，不影响合法请求
	require.Error(t, err)
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[1].Success)
}
