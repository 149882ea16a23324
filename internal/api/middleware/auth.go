package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/pkg/jwt"
	"github.com/group-shedule/schedule-site/pkg/response"
)

const (
	// AdminCookie 管理员会话 Cookie（HttpOnly，内容为 JWT）
	AdminCookie   = "isAdmin"
	adminTokenKey = "admin_token"
)

// AdminAuth 管理员会话中间件
// 从 isAdmin Cookie 中取出 Token 并校验，结果写入会话状态的 IsAdmin/AdminName；
// Token 无效、过期或已吊销时清掉 Cookie，请求按普通访客继续
func AdminAuth(authSvc service.AuthService, cookieCfg config.CookieConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := GetState(c)
		if st == nil {
			c.Next()
			return
		}
		st.IsAdmin = false
		st.AdminName = ""

		token, err := c.Cookie(AdminCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		claims, err := authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, jwt.ErrTokenExpired) {
				logger.Info("管理员 Token 无效", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			}
			ClearAdminCookie(c, cookieCfg)
			c.Next()
			return
		}

		st.IsAdmin = true
		st.AdminName = claims.Login
		c.Set(adminTokenKey, token)
		c.Next()
	}
}

// RequireAdmin 仅管理员可访问的 JSON 接口
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if st := GetState(c); st == nil || !st.IsAdmin {
			response.Forbidden(c, 10003, "Требуется режим администратора")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAdminToken 当前请求携带的有效管理员 Token
func GetAdminToken(c *gin.Context) string {
	return c.GetString(adminTokenKey)
}

// SetAdminCookie 登录成功后下发管理员 Cookie
func SetAdminCookie(c *gin.Context, cookieCfg config.CookieConfig, token string, maxAge int) {
	c.SetSameSite(ParseSameSite(cookieCfg.SameSite))
	c.SetCookie(AdminCookie, token, maxAge, "/", cookieCfg.Domain, cookieCfg.Secure, true)
}

// ClearAdminCookie 清除管理员 Cookie
func ClearAdminCookie(c *gin.Context, cookieCfg config.CookieConfig) {
	c.SetSameSite(ParseSameSite(cookieCfg.SameSite))
	c.SetCookie(AdminCookie, "", -1, "/", cookieCfg.Domain, cookieCfg.Secure, true)
}
