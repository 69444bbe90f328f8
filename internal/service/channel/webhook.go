package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	"gitee.com/flycash/notification-dispatch/internal/pkg/retry"
)

const (
	defaultWebhookTimeout = 10 * time.Second
	maxErrorBodyBytes     = 512
)

// WebhookPayload 推送给业务方回调地址的JSON报文
type WebhookPayload struct {
	RecipientID int64             `json:"recipientId"`
	Type        string            `json:"type"`
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Priority    string            `json:"priority"`
	LinkURL     string            `json:"linkUrl,omitempty"`
	ExtraData   map[string]string `json:"extraData,omitempty"`
	Timestamp   int64             `json:"timestamp"`
}

// webhookChannel Webhook渠道，向固定地址POST JSON
// 业务方地址抖动时按重试配置补发
type webhookChannel struct {
	url      string
	client   *http.Client
	retryCfg *retry.Config
}

// NewWebhookChannel 创建Webhook渠道，timeout<=0时使用默认超时，retryCfg为nil时不重试
func NewWebhookChannel(url string, timeout time.Duration, retryCfg *retry.Config) Channel {
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &webhookChannel{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		retryCfg: retryCfg,
	}
}

func (c *webhookChannel) Send(ctx context.Context, notification domain.Notification) error {
	if c.url == "" {
		return fmt.Errorf("%w", errs.ErrWebhookNotConfigured)
	}

	err := c.sendOnce(ctx, notification)
	if err == nil || c.retryCfg == nil {
		return err
	}

	// 重试策略有内部状态，每次发送单独构造
	strategy, serr := retry.NewStrategy(*c.retryCfg)
	if serr != nil {
		return err
	}
	for {
		interval, ok := strategy.Next()
		if !ok {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if err = c.sendOnce(ctx, notification); err == nil {
			return nil
		}
	}
}

func (c *webhookChannel) sendOnce(ctx context.Context, notification domain.Notification) error {
	payload := WebhookPayload{
		RecipientID: notification.RecipientID,
		Type:        notification.Type,
		Category:    string(notification.Category),
		Title:       notification.Title,
		Content:     notification.Content,
		Priority:    string(notification.Priority),
		LinkURL:     notification.LinkURL,
		ExtraData:   notification.ExtraData,
		Timestamp:   time.Now().UnixMilli(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化webhook报文失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建webhook请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook请求失败: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// 带上响应开头方便排查
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("webhook响应异常: status = %d, body = %s", resp.StatusCode, snippet)
	}
	return nil
}
