package channel

import (
	"context"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// metricsChannel 为渠道实现添加指标收集的装饰器
type metricsChannel struct {
	channel             Channel
	name                domain.Channel
	sendDurationSummary *prometheus.SummaryVec
	sendCounter         *prometheus.CounterVec
}

var (
	sendDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "notification_channel_send_duration_seconds",
			Help:       "渠道发送通知耗时统计（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"channel", "status"},
	)

	sendCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_channel_send_total",
			Help: "渠道发送通知状态统计",
		},
		[]string{"channel", "status"},
	)
)

func init() {
	// 注册指标
	prometheus.MustRegister(sendDurationSummary, sendCounter)
}

// NewMetricsChannel 创建一个新的带有指标收集的渠道
func NewMetricsChannel(name domain.Channel, c Channel) Channel {
	return &metricsChannel{
		channel:             c,
		name:                name,
		sendDurationSummary: sendDurationSummary,
		sendCounter:         sendCounter,
	}
}

// Send 发送通知并记录指标
func (m *metricsChannel) Send(ctx context.Context, notification domain.Notification) error {
	// 开始计时
	startTime := time.Now()

	// 调用底层渠道发送通知
	err := m.channel.Send(ctx, notification)

	// 计算耗时
	duration := time.Since(startTime).Seconds()

	status := string(domain.StatusSucceeded)
	if err != nil {
		status = string(domain.StatusFailed)
	}

	// 记录发送状态
	m.sendCounter.WithLabelValues(string(m.name), status).Inc()

	// 记录耗时
	m.sendDurationSummary.WithLabelValues(string(m.name), status).Observe(duration)

	return err
}
