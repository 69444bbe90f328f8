package metrics

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	// Redis命令计数器
	commandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_redis_commands_total",
			Help: "Total number of Redis commands executed",
		},
		[]string{"command", "status"},
	)

	// Redis命令执行时间
	commandDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "notification_redis_command_duration_seconds",
			Help:       "Redis command execution time in seconds",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		},
		[]string{"command"},
	)

	// Redis连接计数器
	connectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_redis_connections_total",
			Help: "Total number of Redis connections created",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		commandCounter,
		commandDuration,
		connectionCounter,
	)
}

// Hook 实现了 redis.Hook 接口，为去重缓存和设置缓存的Redis操作收集指标
type Hook struct{}

func NewMetricsHook() *Hook {
	return &Hook{}
}

// ProcessHook 处理Redis命令的指标收集
func (h *Hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		startTime := time.Now()
		err := next(ctx, cmd)
		record(cmd, time.Since(startTime))
		return err
	}
}

// ProcessPipelineHook 管道里的每条命令单独计数
func (h *Hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		startTime := time.Now()
		err := next(ctx, cmds)
		duration := time.Since(startTime)
		for _, cmd := range cmds {
			record(cmd, duration)
		}
		return err
	}
}

// DialHook 处理Redis连接的指标收集
func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		status := statusSuccess
		if err != nil {
			status = statusError
		}
		connectionCounter.WithLabelValues(status).Inc()
		return conn, err
	}
}

func record(cmd redis.Cmder, duration time.Duration) {
	commandDuration.WithLabelValues(cmd.Name()).Observe(duration.Seconds())
	// redis.Nil是正常的未命中，不算错误
	status := statusSuccess
	if err := cmd.Err(); err != nil && !errors.Is(err, redis.Nil) {
		status = statusError
	}
	commandCounter.WithLabelValues(cmd.Name(), status).Inc()
}

// WithMetrics 为Redis客户端添加指标收集功能
func WithMetrics(client *redis.Client) *redis.Client {
	client.AddHook(NewMetricsHook())
	return client
}
