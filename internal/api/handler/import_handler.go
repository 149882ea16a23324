package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/api/middleware"
	"github.com/group-shedule/schedule-site/internal/service"
)

// MsgCalendarTooLarge 上传的日历文件超过请求体上限
const MsgCalendarTooLarge = "Файл календаря слишком большой"

const msgImportNoSource = "Выберите файл или укажите ссылку на календарь"

// ImportHandler ICS 导入 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
	logger    *zap.Logger
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, logger: logger}
}

// ImportICS 把外部日历中所选周的课程追加到课表
// POST /import/ics
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - 订阅地址: field="url"（http/https/webcal）
func (h *ImportHandler) ImportICS(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}

	file, _, err := c.Request.FormFile("file")
	if middleware.IsBodyTooLarge(err) {
		st.AddFlash(MsgCalendarTooLarge)
		redirectHome(c)
		return
	}
	if err == nil {
		defer file.Close()
		finish(c, st, h.importSvc.ImportICS(c.Request.Context(), st, file), h.logger)
		return
	}

	if u := c.PostForm("url"); u != "" {
		finish(c, st, h.importSvc.ImportICSURL(c.Request.Context(), st, u), h.logger)
		return
	}

	if !st.IsAdmin {
		handleActionError(c, st, service.ErrNotAdmin, h.logger)
		return
	}
	st.AddFlash(msgImportNoSource)
	redirectHome(c)
}
