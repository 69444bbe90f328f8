package ioc

import (
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/pkg/idgen"
	"gitee.com/flycash/notification-dispatch/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/repository/cache/local"
	redisc "gitee.com/flycash/notification-dispatch/internal/repository/cache/redis"
	"gitee.com/flycash/notification-dispatch/internal/repository/dao"
	"gitee.com/flycash/notification-dispatch/internal/service/channel"
	"gitee.com/flycash/notification-dispatch/internal/service/dedup"
	"gitee.com/flycash/notification-dispatch/internal/service/dispatch"
	"gitee.com/flycash/notification-dispatch/internal/service/retention"
	settingssvc "gitee.com/flycash/notification-dispatch/internal/service/settings"
	notificationweb "gitee.com/flycash/notification-dispatch/internal/web/notification"
	settingsweb "gitee.com/flycash/notification-dispatch/internal/web/settings"
	"github.com/gotomicro/ego/core/econf"
	"github.com/gotomicro/ego/server/egin"
	"github.com/gotomicro/ego/task/ecron"
	ca "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const (
	localCacheExpiration = 10 * time.Minute
	localCacheCleanup    = time.Minute
	webhookTimeout       = 10 * time.Second
)

type App struct {
	WebServer *egin.Component
	Crons     []ecron.Ecron

	Dispatcher  dispatch.Dispatcher
	SettingsSvc settingssvc.Service

	SettingsRepo repository.SettingsRepository
	MessageRepo  repository.MessageRepository
	LogRepo      repository.DeliveryLogRepository
}

func InitApp() *App {
	db := InitDB()
	rdb := InitRedisClient()
	gen := idgen.NewGenerator()

	settingsRepo := repository.NewSettingsRepository(
		dao.NewSettingsDAO(db),
		local.NewLocalCache(ca.New(localCacheExpiration, localCacheCleanup)),
		redisc.NewCache(rdb),
	)
	msgRepo := repository.NewMessageRepository(dao.NewMessageDAO(db), gen)
	logRepo := repository.NewDeliveryLogRepository(dao.NewDeliveryLogDAO(db))

	settingsSvc := settingssvc.NewService(settingsRepo)
	dispatcher := dispatch.NewDispatcher(
		initDedupService(rdb),
		settingsSvc,
		initChannelRegistry(msgRepo),
		logRepo,
	)

	webServer := InitWebServer(
		notificationweb.NewHandler(dispatcher, msgRepo, initLimiter(rdb)),
		settingsweb.NewHandler(settingsSvc),
	)

	return &App{
		WebServer:    webServer,
		Crons:        Crons(retention.NewCron(msgRepo, logRepo)),
		Dispatcher:   dispatcher,
		SettingsSvc:  settingsSvc,
		SettingsRepo: settingsRepo,
		MessageRepo:  msgRepo,
		LogRepo:      logRepo,
	}
}

// initDedupService 按配置选择去重实现，多实例部署用redis，单实例用本地缓存
func initDedupService(rdb redis.Cmdable) dedup.Service {
	type Config struct {
		Mode          string
		WindowSeconds int
	}
	var cfg Config
	if err := econf.UnmarshalKey("dedup", &cfg); err != nil {
		panic(err)
	}
	window := dedup.DefaultWindow
	if cfg.WindowSeconds > 0 {
		window = time.Duration(cfg.WindowSeconds) * time.Second
	}
	if cfg.Mode == "redis" {
		return dedup.NewRedisService(rdb, window)
	}
	return dedup.NewLocalService(window)
}

// initChannelRegistry 组装渠道表，每个渠道套上指标和链路追踪装饰器
func initChannelRegistry(msgRepo repository.MessageRepository) *channel.Registry {
	type Config struct {
		WebhookURL string
		Retry      *retry.Config
	}
	var cfg Config
	if err := econf.UnmarshalKey("channels", &cfg); err != nil {
		panic(err)
	}

	channels := map[domain.Channel]channel.Channel{
		domain.ChannelSystem: channel.NewInAppChannel(msgRepo),
		// 邮件、企业微信、短信的真实网关由运维侧接入，默认用控制台渠道联调
		domain.ChannelEmail:  channel.NewConsoleChannel(domain.ChannelEmail),
		domain.ChannelWechat: channel.NewConsoleChannel(domain.ChannelWechat),
		domain.ChannelSMS:    channel.NewConsoleChannel(domain.ChannelSMS),
	}
	if cfg.WebhookURL != "" {
		channels[domain.ChannelWebhook] = channel.NewWebhookChannel(cfg.WebhookURL, webhookTimeout, cfg.Retry)
	}
	for name, ch := range channels {
		channels[name] = channel.NewMetricsChannel(name, channel.NewTracingChannel(name, ch))
	}
	return channel.NewRegistry(channels)
}

func initLimiter(rdb redis.Cmdable) ratelimit.Limiter {
	type Config struct {
		IntervalSeconds int
		Rate            int
	}
	var cfg Config
	if err := econf.UnmarshalKey("ratelimit", &cfg); err != nil {
		panic(err)
	}
	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 1
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 100
	}
	return ratelimit.NewRedisSlidingWindowLimiter(rdb, time.Duration(cfg.IntervalSeconds)*time.Second, cfg.Rate)
}
