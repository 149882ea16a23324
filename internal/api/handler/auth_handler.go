package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/api/middleware"
	"github.com/group-shedule/schedule-site/internal/dto"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/internal/session"
)

// AuthHandler 管理员会话 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	authCfg config.AuthConfig
	logger  *zap.Logger
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, authCfg config.AuthConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, authCfg: authCfg, logger: logger}
}

// Toggle 右上角齿轮按钮：管理员点击为退出（需确认），访客点击为打开登录框
// POST /admin/toggle
func (h *AuthHandler) Toggle(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	if st.IsAdmin {
		h.logout(c, st, c.Request.URL.Path)
		return
	}
	st.OpenModal(session.ModalLogin, "")
	redirectHome(c)
}

// Login 管理员登录
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	var form dto.LoginForm
	if !bindForm(c, st, &form) {
		return
	}

	token, err := h.authSvc.Login(c.Request.Context(), st, form.Login, form.Password)
	if err != nil {
		handleActionError(c, st, err, h.logger)
		return
	}
	if token == "" {
		// 空登录名或密码等同于取消
		st.CloseModal()
		redirectHome(c)
		return
	}
	middleware.SetAdminCookie(c, h.authCfg.Cookie, token, int(h.authCfg.TokenTTL.Seconds()))
	redirectHome(c)
}

// Logout 退出管理员模式（需确认）
// POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	st, ok := MustGetState(c)
	if !ok {
		return
	}
	h.logout(c, st, c.Request.URL.Path)
}

func (h *AuthHandler) logout(c *gin.Context, st *session.State, action string) {
	confirm := formConfirmer(c, st, action, nil)
	done, err := h.authSvc.Logout(c.Request.Context(), st, middleware.GetAdminToken(c), confirm)
	if err != nil {
		handleActionError(c, st, err, h.logger)
		return
	}
	if done {
		middleware.ClearAdminCookie(c, h.authCfg.Cookie)
	}
	redirectHome(c)
}
