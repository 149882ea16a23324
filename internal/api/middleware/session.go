package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/session"
)

const (
	// SessionCookie 浏览器会话 Cookie
	SessionCookie = "sid"
	stateKey      = "session_state"
)

// Session 会话状态中间件
//
// 流程：
//  1. 读取 sid Cookie，缺失或非法时生成新 UUID 并下发
//  2. 锁住该会话，保证同一浏览器的请求串行执行
//  3. 加载状态注入上下文，Handler 执行完后写回
func Session(store session.Store, cookieCfg config.CookieConfig, ttlSeconds int, logger *zap.Logger) gin.HandlerFunc {
	sameSite := ParseSameSite(cookieCfg.SameSite)
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.New().String()
		}
		// 每次都刷新 Cookie 有效期，与存储 TTL 保持一致
		c.SetSameSite(sameSite)
		c.SetCookie(SessionCookie, id, ttlSeconds, "/", cookieCfg.Domain, cookieCfg.Secure, true)

		unlock := store.Lock(id)
		defer unlock()

		ctx := c.Request.Context()
		st, err := store.Load(ctx, id)
		if err != nil {
			logger.Warn("加载会话失败，使用新会话", zap.String("request_id", GetRequestID(c)), zap.Error(err))
			st = session.New()
		}
		SetState(c, st)

		c.Next()

		// 请求可能已被取消，写回不应随之失败
		if err := store.Save(context.WithoutCancel(ctx), id, st); err != nil {
			logger.Error("保存会话失败", zap.String("request_id", GetRequestID(c)), zap.Error(err))
		}
	}
}

// SetState 把会话状态注入上下文
func SetState(c *gin.Context, st *session.State) {
	c.Set(stateKey, st)
}

// GetState 取出当前请求的会话状态，未经 Session 中间件时为 nil
func GetState(c *gin.Context) *session.State {
	v, ok := c.Get(stateKey)
	if !ok {
		return nil
	}
	st, _ := v.(*session.State)
	return st
}

// ParseSameSite 配置字符串转为 http.SameSite
func ParseSameSite(s string) http.SameSite {
	switch s {
	case "Strict", "strict":
		return http.SameSiteStrictMode
	case "None", "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
