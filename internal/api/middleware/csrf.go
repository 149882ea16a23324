package middleware

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
)

const msgCSRFFailed = "Страница устарела. Обновите её и повторите действие."

type ginContextKey struct{}

// CSRF 以 gin 中间件形式挂载 gorilla/csrf
//
// 表单通过隐藏字段提交 Token，内联编辑的 fetch 请求通过 X-CSRF-Token 头提交。
// 排在 Session 与 UploadLimit 之后：上传超限时 Token 读不出来，
// 此时不报"页面过期"，而是写入该路由的超限提示并回到首页。
func CSRF(authCfg *config.AuthConfig, logger *zap.Logger) gin.HandlerFunc {
	key := sha256.Sum256([]byte("csrf:" + authCfg.JWTSecret))

	onFailure := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := r.Context().Value(ginContextKey{}).(*gin.Context)
		if c == nil {
			http.Error(w, msgCSRFFailed, http.StatusForbidden)
			return
		}
		defer c.Abort()

		if msg := c.GetString(bodyLimitMsgKey); msg != "" && bodyLimitHit(r) {
			if st := GetState(c); st != nil {
				st.AddFlash(msg)
			}
			logger.Info("上传请求体超限", zap.String("path", r.URL.Path), zap.String("request_id", GetRequestID(c)))
			c.Redirect(http.StatusSeeOther, "/")
			return
		}

		logger.Warn("CSRF 校验失败",
			zap.String("path", r.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", GetRequestID(c)),
			zap.Error(csrf.FailureReason(r)),
		)
		http.Error(w, msgCSRFFailed, http.StatusForbidden)
	})

	// 校验通过后带着 csrf 写入的请求继续 gin 的处理链
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		c := r.Context().Value(ginContextKey{}).(*gin.Context)
		c.Request = r
		c.Next()
	})

	protect := csrf.Protect(key[:],
		csrf.Path("/"),
		csrf.Secure(authCfg.Cookie.Secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrfSameSite(authCfg.Cookie.SameSite)),
		csrf.ErrorHandler(onFailure),
	)(next)

	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), ginContextKey{}, c)
		protect.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
	}
}

func csrfSameSite(s string) csrf.SameSiteMode {
	switch ParseSameSite(s) {
	case http.SameSiteStrictMode:
		return csrf.SameSiteStrictMode
	case http.SameSiteNoneMode:
		return csrf.SameSiteNoneMode
	default:
		return csrf.SameSiteLaxMode
	}
}
