package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/pkg/response"
)

// NotifyHandler 变更通知 HTTP 处理器
type NotifyHandler struct {
	notifySvc service.NotifyService
	logger    *zap.Logger
}

// NewNotifyHandler 创建 NotifyHandler
func NewNotifyHandler(notifySvc service.NotifyService, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{notifySvc: notifySvc, logger: logger}
}

// Send 发送变更通知（需确认）
// POST /notify
func (h *NotifyHandler) Send(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	confirm := formConfirmer(c, st, c.Request.URL.Path, nil)
	finish(c, st, h.notifySvc.SendNotification(c.Request.Context(), st, confirm), h.logger)
}

// ListSent 通知发送记录
// GET /notifications?page=1&page_size=20
func (h *NotifyHandler) ListSent(c *gin.Context) {
	var q dto.NotificationLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 30001, "Неверные параметры")
		return
	}

	list, total, err := h.notifySvc.ListSent(c.Request.Context(), &q.PaginationRequest)
	if err != nil {
		if errors.Is(err, service.ErrJournalOff) {
			response.Error(c, http.StatusNotFound, 30002, err.Error())
			return
		}
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}
