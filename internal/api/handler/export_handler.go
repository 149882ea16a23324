package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/group-shedule/schedule-site/internal/api/middleware"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc   service.ExportService
	scheduleSvc service.ScheduleService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, scheduleSvc service.ScheduleService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, scheduleSvc: scheduleSvc}
}

// ExportDay 当天课表导出为 iCalendar
// GET /export/day.ics?date=YYYY-MM-DD
func (h *ExportHandler) ExportDay(c *gin.Context) {
	data, filename, err := h.exportSvc.ExportDayICS(c.Request.Context(), h.pickDate(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	setAttachment(c, filename)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", data)
}

// ExportWeek 所在周课表导出为 Excel
// GET /export/week.xlsx?date=YYYY-MM-DD
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportWeekXLSX(c.Request.Context(), h.pickDate(c))
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	setAttachment(c, filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// pickDate 优先取查询参数，其次会话中的日期，最后是今天
func (h *ExportHandler) pickDate(c *gin.Context) string {
	if d := c.Query("date"); d != "" {
		return d
	}
	if st := middleware.GetState(c); st != nil && st.Date != "" {
		return st.Date
	}
	return h.scheduleSvc.Today()
}

func setAttachment(c *gin.Context, filename string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 40001, "Неверная дата")
	case errors.Is(err, service.ErrExportFetch):
		response.BadGateway(c, 40002, "Не удалось получить расписание")
	default:
		response.InternalError(c)
	}
}
