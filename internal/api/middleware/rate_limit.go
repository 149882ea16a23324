package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/pkg/redis"
)

const msgTooManyAttempts = "Слишком много попыток. Попробуйте позже."

// RateLimit 基于 Redis 固定窗口计数的速率限制中间件（用于登录）
// limit: 窗口内允许的最大请求数
// window: 计数窗口时长，窗口从首个请求开始计时
// rdb 为 nil 或 Redis 出错时降级放行；超限时写入提示并回到首页
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，降级放行", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			if st := GetState(c); st != nil {
				st.AddFlash(msgTooManyAttempts)
			}
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		c.Next()
	}
}
