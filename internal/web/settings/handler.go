package settings

import (
	"errors"
	"net/http"

	"gitee.com/flycash/notification-dispatch/internal/domain"
	"gitee.com/flycash/notification-dispatch/internal/errs"
	settingssvc "gitee.com/flycash/notification-dispatch/internal/service/settings"
	"gitee.com/flycash/notification-dispatch/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

const (
	codeOK           = 0
	codeInvalidParam = 400001
	codeInternal     = 500001
)

type Handler struct {
	svc    settingssvc.Service
	logger *elog.Component
}

func NewHandler(svc settingssvc.Service) *Handler {
	return &Handler{
		svc:    svc,
		logger: elog.DefaultLogger,
	}
}

func (h *Handler) PublicRoutes(server *gin.Engine) {
	server.GET("/api/users/:id/settings", h.Get)
	server.PUT("/api/users/:id/settings", h.Save)
}

// SettingsVO 用户通知设置
type SettingsVO struct {
	EmailEnabled          bool   `json:"emailEnabled"`
	WechatEnabled         bool   `json:"wechatEnabled"`
	SMSEnabled            bool   `json:"smsEnabled"`
	TaskNotifications     bool   `json:"taskNotifications"`
	ApprovalNotifications bool   `json:"approvalNotifications"`
	AlertNotifications    bool   `json:"alertNotifications"`
	IssueNotifications    bool   `json:"issueNotifications"`
	ProjectNotifications  bool   `json:"projectNotifications"`
	QuietHoursStart       string `json:"quietHoursStart"`
	QuietHoursEnd         string `json:"quietHoursEnd"`
}

type UserURI struct {
	ID int64 `uri:"id" binding:"required"`
}

func (h *Handler) Get(ctx *gin.Context) {
	var uri UserURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}

	s, err := h.svc.GetByUserID(ctx.Request.Context(), uri.ID)
	if err != nil {
		// 没有保存过设置的用户返回默认设置
		if errors.Is(err, errs.ErrSettingsNotFound) {
			ctx.JSON(http.StatusOK, web.Result[SettingsVO]{Code: codeOK, Data: toVO(domain.DefaultSettings(uri.ID))})
			return
		}
		h.logger.Warn("获取用户通知设置失败", elog.Int64("userID", uri.ID), elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, web.Result[any]{Code: codeInternal, Msg: "获取设置失败"})
		return
	}
	ctx.JSON(http.StatusOK, web.Result[SettingsVO]{Code: codeOK, Data: toVO(s)})
}

func (h *Handler) Save(ctx *gin.Context) {
	var uri UserURI
	if err := ctx.ShouldBindUri(&uri); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}
	var req SettingsVO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
		return
	}

	err := h.svc.Save(ctx.Request.Context(), toDomain(uri.ID, req))
	if err != nil {
		if errors.Is(err, errs.ErrInvalidParameter) {
			ctx.JSON(http.StatusBadRequest, web.Result[any]{Code: codeInvalidParam, Msg: err.Error()})
			return
		}
		h.logger.Warn("保存用户通知设置失败", elog.Int64("userID", uri.ID), elog.FieldErr(err))
		ctx.JSON(http.StatusInternalServerError, web.Result[any]{Code: codeInternal, Msg: "保存设置失败"})
		return
	}
	ctx.JSON(http.StatusOK, web.Result[any]{Code: codeOK})
}

func toVO(s domain.UserNotificationSettings) SettingsVO {
	return SettingsVO{
		EmailEnabled:          s.EmailEnabled,
		WechatEnabled:         s.WechatEnabled,
		SMSEnabled:            s.SMSEnabled,
		TaskNotifications:     s.TaskNotifications,
		ApprovalNotifications: s.ApprovalNotifications,
		AlertNotifications:    s.AlertNotifications,
		IssueNotifications:    s.IssueNotifications,
		ProjectNotifications:  s.ProjectNotifications,
		QuietHoursStart:       s.QuietHoursStart,
		QuietHoursEnd:         s.QuietHoursEnd,
	}
}

func toDomain(userID int64, vo SettingsVO) domain.UserNotificationSettings {
	return domain.UserNotificationSettings{
		UserID:                userID,
		EmailEnabled:          vo.EmailEnabled,
		WechatEnabled:         vo.WechatEnabled,
		SMSEnabled:            vo.SMSEnabled,
		TaskNotifications:     vo.TaskNotifications,
		ApprovalNotifications: vo.ApprovalNotifications,
		AlertNotifications:    vo.AlertNotifications,
		IssueNotifications:    vo.IssueNotifications,
		ProjectNotifications:  vo.ProjectNotifications,
		QuietHoursStart:       vo.QuietHoursStart,
		QuietHoursEnd:         vo.QuietHoursEnd,
	}
}
