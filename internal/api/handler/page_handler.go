package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/internal/view"
	"github.com/group-shedule/schedule-site/pkg/response"
)

// PageHandler 页面渲染、翻天与弹窗切换
type PageHandler struct {
	scheduleSvc service.ScheduleService
	renderer    *view.Renderer
	upload      view.UploadHint
	journal     bool
	logger      *zap.Logger
}

// NewPageHandler 创建 PageHandler
func NewPageHandler(scheduleSvc service.ScheduleService, renderer *view.Renderer, cfg *config.Config, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		scheduleSvc: scheduleSvc,
		renderer:    renderer,
		upload: view.UploadHint{
			Compress: cfg.Upload.Mode == config.UploadModeCompress,
			MaxMB:    cfg.Upload.MaxFileBytes / (1024 * 1024),
		},
		journal: cfg.Database.Enabled,
		logger:  logger,
	}
}

// Index 渲染课表页
// GET /?date=YYYY-MM-DD
//
// 带 date 参数或会话还没有日期时拉取该日；
// 变更操作刚刚重新拉取过的快照直接使用，否则刷新当前日期
func (h *PageHandler) Index(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}

	var q dto.PickDateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		st.AddFlash(service.ErrInvalidDate.Error())
		q.Date = ""
	}

	fresh := st.ConsumeFresh()
	switch {
	case q.Date != "" && q.Date != st.Date:
		h.scheduleSvc.LoadSchedule(c.Request.Context(), st, q.Date)
	case st.Date == "":
		h.scheduleSvc.LoadSchedule(c.Request.Context(), st, "")
	case !fresh:
		h.scheduleSvc.Reload(c.Request.Context(), st)
	}
	// 本次已是最新快照，下一次访问照常刷新
	st.ConsumeFresh()

	page := view.NewPage(st)
	page.CSRFField = csrf.TemplateField(c.Request)
	page.CSRFToken = csrf.Token(c.Request)
	page.Today = h.scheduleSvc.Today()
	page.Upload = h.upload
	page.Journal = h.journal

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Header("Cache-Control", "no-store")
	if err := h.renderer.Render(c.Writer, page); err != nil {
		h.logger.Error("渲染页面失败", zap.Error(err))
		response.InternalError(c)
	}
}

// ShiftDate 前后翻天
// POST /date/shift
func (h *PageHandler) ShiftDate(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var form dto.ShiftDateForm
	if err := c.ShouldBind(&form); err != nil {
		redirectHome(c)
		return
	}
	finish(c, st, h.scheduleSvc.ChangeDate(c.Request.Context(), st, form.Delta), h.logger)
}

// OpenAddForm 打开新增课程弹窗
// POST /modal/add
func (h *PageHandler) OpenAddForm(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	if !st.IsAdmin {
		handleActionError(c, st, service.ErrNotAdmin, h.logger)
		return
	}
	st.OpenModal(session.ModalAdd, "")
	redirectHome(c)
}

// CloseModal 关闭弹窗（确认框中点"取消"也走这里）
// POST /modal/close
func (h *PageHandler) CloseModal(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	st.CloseModal()
	redirectHome(c)
}

// Health 存活检查
// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
