package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/service"
)

// TemplateHandler 课表模板 HTTP 处理器
type TemplateHandler struct {
	templateSvc service.TemplateService
	logger      *zap.Logger
}

// NewTemplateHandler 创建 TemplateHandler
func NewTemplateHandler(templateSvc service.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{templateSvc: templateSvc, logger: logger}
}

// SaveWeek 把所选日期所在周保存为模板
// POST /templates/week
func (h *TemplateHandler) SaveWeek(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var form dto.TemplateNameForm
	if !bindForm(c, st, &form) {
		return
	}
	finish(c, st, h.templateSvc.SaveWeekAsTemplate(c.Request.Context(), st, form.Name), h.logger)
}

// SaveDay 把当天课表保存为模板
// POST /templates/day
func (h *TemplateHandler) SaveDay(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var form dto.TemplateNameForm
	if !bindForm(c, st, &form) {
		return
	}
	finish(c, st, h.templateSvc.SaveDayAsTemplate(c.Request.Context(), st, form.Name), h.logger)
}

// OpenTemplates 拉取模板列表并打开模板弹窗
// GET /templates
func (h *TemplateHandler) OpenTemplates(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	if err := h.templateSvc.OpenTemplateModal(c.Request.Context(), st); err != nil {
		handleActionError(c, st, err, h.logger)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ApplyTemplate 把模板追加到所选日期（需确认）
// POST /templates/:id/apply
func (h *TemplateHandler) ApplyTemplate(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	confirm := formConfirmer(c, st, c.Request.URL.Path, nil)
	finish(c, st, h.templateSvc.ApplyTemplate(c.Request.Context(), st, c.Param("id"), confirm), h.logger)
}

// DeleteTemplate 删除模板（需确认）
// POST /templates/:id/delete
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	confirm := formConfirmer(c, st, c.Request.URL.Path, nil)
	finish(c, st, h.templateSvc.DeleteTemplate(c.Request.Context(), st, c.Param("id"), confirm), h.logger)
}
