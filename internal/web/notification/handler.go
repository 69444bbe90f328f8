package notification

import (
	"net/http"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-dispatch/internal/repository"
	"gitee.com/flycash/notification-dispatch/internal/service/dispatch"
	"gitee.com/flycash/notification-dispatch/internal/web"
	"github.com/ecodeclub/ekit/slice"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	batchLimitKey    = "notification:batch"
	codeOK           = 0
	codeInvalidParam = 400001
	codeRateLimited  = 429001
	codeInternal     = 500001
)

type Handler struct {
	dispatcher dispatch.Dispatcher
	msgRepo    repository.MessageRepository
	limiter    ratelimit.Limiter
	logger     *elog.Component
}

func NewHandler(dispatcher dispatch.Dispatcher, msgRepo repository.MessageRepository, limiter ratelimit.Limiter) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		msgRepo:    msgRepo,
		limiter:    limiter,
		logger:     elog.DefaultLogger,
	}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	g := server.Group("/api/notifications")
	g.POST("/send", h.Send)
	g.POST("/batch", h.BatchSend)

	server.GET("/api/users/:id/messages", h.ListMessages)
	server.PUT("/api/users/:id/messages/:msgId/read", h.MarkRead)
}

// SendReq 单条通知发送请求
type SendReq struct {
	RecipientID int64             `json:"recipientId" binding:"required"`
	Type        string            `json:"type" binding:"required"`
	Category    string            `json:"category"`
	Title       string            `json:"title" binding:"required"`
	Content     string            `json:"content"`
	Priority    string            `json:"priority"`
	SourceType  string            `json:"sourceType"`
	SourceID    int64             `json:"sourceId"`
	Channels    []string          `json:"channels"`
	ForceSend   bool              `json:"forceSend"`
	LinkURL     string            `json:"linkUrl"`
	ExtraData   map[string]string `json:"extraData"`
}

// BatchSendReq 批量通知发送请求
type BatchSendReq struct {
	Notifications []SendReq `json:"notifications" binding:"required"`
}

// SendResp 单条通知的发送结果
type SendResp struct {
	Success        bool            `json:"success"`
	Deduped        bool            `json:"deduped"`
	QuietHours     bool            `json:"quietHours"`
	Disabled       bool            `json:"disabled"`
	ChannelsSent   []string        `json:"channelsSent"`
	ChannelsFailed []string        `json:"channelsFailed"`
	Results        []ChannelResult `json:"results"`
}

type ChannelResult struct {
	Channel      string `json:"channel"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type BatchSendResp struct {
	Outcomes []SendResp `json:"outcomes"`
}

// MessageVO 站内信
type MessageVO struct {
	ID        int64             `json:"id,string"`
	Type      string            `json:"type"`
	Category  string            `json:"category"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	LinkURL   string            `json:"linkUrl"`
	ExtraData map[string]string `json:"extraData,omitempty"`
	Read      bool              `json:"read"`
	Ctime     int64             `json:"ctime"`
}

type ListMessagesResp struct {
	Messages []MessageVO `json:"messages"`
}

func (h *Handler) Send(ctx *gin.Context) {
	var req SendReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}

	outcome, err := h.dispatcher.Send(ctx.Request.Context(), req.toDomain())
	if err != nil {
		h.logger.Warn("发送通知失败", elog.Int64("recipientID", req.RecipientID), elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, web.Result[any]{Code: codeInternal, Msg: "发送通知失败"})
		return
	}
	ctx.JSON(http.StatusOK, web.Result[SendResp]{Code: codeOK, Data: newSendResp(outcome)})
}

func (h *Handler) BatchSend(ctx *gin.Context) {
	limited, err := h.limiter.Limit(ctx.Request.Context(), batchLimitKey)
	if err != nil {
		// 限流器故障放行，不能因为Redis抖动丢通知
		h.logger.Warn("限流检查失败", elog.FieldErr(err))
	}
	if limited {
		ctx.JSON(http.StatusTooManyRequests, web.Result[any]{Code: codeRateLimited, Msg: "请求过于频繁，请稍后再试"})
		return
	}

	var req BatchSendReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}

	notifications := slice.Map(req.Notifications, func(_ int, src SendReq) domain.Notification {
		return src.toDomain()
	})
	outcomes, err := h.dispatcher.BatchSend(ctx.Request.Context(), notifications)
	if err != nil {
		// 部分失败也带上已有结果
		h.logger.Warn("批量发送部分失败", elog.FieldErr(err))
	}
	resp := BatchSendResp{
		Outcomes: slice.Map(outcomes, func(_ int, src domain.SendOutcome) SendResp {
			return newSendResp(src)
		}),
	}
	ctx.JSON(http.StatusOK, web.Result[BatchSendResp]{Code: codeOK, Data: resp})
}

func (h *Handler) ListMessages(ctx *gin.Context) {
	var uri UserURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}
	var page PageQuery
	if err := ctx.ShouldBindQuery(&page); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}
	if page.Limit <= 0 || page.Limit > maxPageSize {
		page.Limit = defaultPageSize
	}

	messages, err := h.msgRepo.FindByRecipient(ctx.Request.Context(), uri.ID, page.Offset, page.Limit)
	if err != nil {
		h.logger.Warn("查询站内信失败", elog.Int64("userID", uri.ID), elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, web.Result[any]{Code: codeInternal, Msg: "查询站内信失败"})
		return
	}
	resp := ListMessagesResp{
		Messages: slice.Map(messages, func(_ int, src domain.Message) MessageVO {
			return MessageVO{
				ID:        src.ID,
				Type:      src.Type,
				Category:  string(src.Category),
				Title:     src.Title,
				Content:   src.Content,
				LinkURL:   src.LinkURL,
				ExtraData: src.ExtraData,
				Read:      src.Read,
				Ctime:     src.Ctime,
			}
		}),
	}
	ctx.JSON(http.StatusOK, web.Result[ListMessagesResp]{Code: codeOK, Data: resp})
}

func (h *Handler) MarkRead(ctx *gin.Context) {
	var uri MessageURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}
	if err := h.msgRepo.MarkRead(ctx.Request.Context(), uri.ID, uri.MsgID); err != nil {
		h.logger.Warn("标记站内信已读失败", elog.Int64("msgID", uri.MsgID), elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, web.Result[any]{Code: codeInternal, Msg: "标记已读失败"})
		return
	}
	ctx.JSON(http.StatusOK, web.Result[any]{Code: codeOK})
}

type UserURI struct {
	ID int64 `uri:"id" binding:"required"`
}

type MessageURI struct {
	ID    int64 `uri:"id" binding:"required"`
	MsgID int64 `uri:"msgId" binding:"required"`
}

type PageQuery struct {
	Offset int `form:"offset"`
	Limit  int `form:"limit"`
}

func (r SendReq) toDomain() domain.Notification {
	return domain.Notification{
		RecipientID: r.RecipientID,
		Type:        r.Type,
		Category:    domain.Category(r.Category),
		Title:       r.Title,
		Content:     r.Content,
		Priority:    domain.Priority(r.Priority),
		SourceType:  r.SourceType,
		SourceID:    r.SourceID,
		Channels: slice.Map(r.Channels, func(_ int, src string) domain.Channel {
			return domain.Channel(src)
		}),
		ForceSend: r.ForceSend,
		LinkURL:   r.LinkURL,
		ExtraData: r.ExtraData,
	}
}

func newSendResp(outcome domain.SendOutcome) SendResp {
	return SendResp{
		Success:        outcome.Success,
		Deduped:        outcome.Deduped,
		QuietHours:     outcome.QuietHours,
		Disabled:       outcome.Disabled,
		ChannelsSent:   channelStrings(outcome.ChannelsSent),
		ChannelsFailed: channelStrings(outcome.ChannelsFailed),
		Results: slice.Map(outcome.Results, func(_ int, src domain.ChannelResult) ChannelResult {
			return ChannelResult{
				Channel:      string(src.Channel),
				Success:      src.Success,
				ErrorMessage: src.ErrorMessage,
			}
		}),
	}
}

func channelStrings(channels []domain.Channel) []string {
	return slice.Map(channels, func(_ int, src domain.Channel) string {
		return string(src)
	})
}
