package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/internal/api/middleware"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/pkg/response"
)

const (
	msgNotAdmin      = "Требуется режим администратора"
	msgInternalError = "Внутренняя ошибка сервера"
	msgBadForm       = "Заполните все поля"
)

// MustGetState 从 Gin 上下文中安全提取会话状态。
// 如果 Session 中间件未注入状态，写入 500 响应并返回 false。
// 调用方应在 ok=false 时直接 return。
func MustGetState(c *gin.Context) (*session.State, bool) {
	st := middleware.GetState(c)
	if st == nil {
		response.InternalError(c)
		return nil, false
	}
	return st, true
}

// formConfirmer 表单版确认框
//
// 请求带 confirm=yes 时视为用户已点"确定"；否则挂起确认，
// 页面展示确认文本并以 action + fields 重新提交。
func formConfirmer(c *gin.Context, st *session.State, action string, fields map[string]string) service.Confirmer {
	return service.ConfirmFunc(func(message string) bool {
		if c.PostForm("confirm") == "yes" {
			st.ResolveConfirm()
			return true
		}
		st.AskConfirm(message, action, fields)
		return false
	})
}

// redirectHome post/redirect/get：所有表单操作结束后回到首页
func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// handleActionError 表单操作的统一错误处理
//
//   - AlertError → 提示文本，回到首页
//   - ErrNotAdmin → 403
//   - 其余业务错误 → 错误文本作为提示
//   - 未知错误 → 记日志，通用提示
func handleActionError(c *gin.Context, st *session.State, err error, logger *zap.Logger) {
	var alertErr *service.AlertError
	switch {
	case errors.As(err, &alertErr):
		st.AddFlash(alertErr.Message)
	case errors.Is(err, service.ErrNotAdmin):
		response.Forbidden(c, 10003, msgNotAdmin)
		return
	case errors.Is(err, service.ErrEntryNotFound),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrNoPhoto),
		errors.Is(err, service.ErrTemplateAbsent):
		st.AddFlash(err.Error())
	default:
		logger.Error("操作失败", zap.String("path", c.Request.URL.Path), zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		st.AddFlash(msgInternalError)
	}
	redirectHome(c)
}

// bindForm 绑定表单；失败时提示"Заполните все поля"并回到首页，返回 false
func bindForm(c *gin.Context, st *session.State, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		st.AddFlash(msgBadForm)
		redirectHome(c)
		return false
	}
	return true
}

// finish 根据操作结果回到首页或进入错误处理
func finish(c *gin.Context, st *session.State, err error, logger *zap.Logger) {
	if err != nil {
		handleActionError(c, st, err, logger)
		return
	}
	redirectHome(c)
}
