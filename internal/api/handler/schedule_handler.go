package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/pkg/response"
)

// ScheduleHandler 课程增删改 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	logger      *zap.Logger
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, logger: logger}
}

// CreateEntry 新增一节课
// POST /entries
func (h *ScheduleHandler) CreateEntry(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var form dto.CreateEntryForm
	if !bindForm(c, st, &form) {
		return
	}
	finish(c, st, h.scheduleSvc.CreateEntry(c.Request.Context(), st, &form), h.logger)
}

// DeleteEntry 删除一节课（需确认）
// POST /entries/:id/delete
func (h *ScheduleHandler) DeleteEntry(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	confirm := formConfirmer(c, st, c.Request.URL.Path, nil)
	finish(c, st, h.scheduleSvc.DeleteEntry(c.Request.Context(), st, c.Param("id"), confirm), h.logger)
}

// UpdateField 内联修改科目或教师
// POST /entries/:id/field
//
// 页面上的 contenteditable 失焦后以 JSON 提交，不跳转、不重新渲染
func (h *ScheduleHandler) UpdateField(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var req dto.UpdateFieldRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 20001, "Неверные параметры")
		return
	}

	id := c.Param("id")
	if err := h.scheduleSvc.UpdateField(c.Request.Context(), st, id, req.Field, req.Value); err != nil {
		h.handleUpdateError(c, err)
		return
	}
	response.OK(c, dto.UpdateFieldResponse{ID: id, Field: req.Field})
}

func (h *ScheduleHandler) handleUpdateError(c *gin.Context, err error) {
	var alertErr *service.AlertError
	switch {
	case errors.Is(err, service.ErrNotAdmin):
		response.Forbidden(c, 10003, msgNotAdmin)
	case errors.Is(err, service.ErrInvalidField):
		response.BadRequest(c, 20002, "Поле нельзя редактировать")
	case errors.As(err, &alertErr):
		response.BadGateway(c, 20003, alertErr.Message)
	default:
		h.logger.Error("内联编辑失败", zap.Error(err))
		response.InternalError(c)
	}
}
