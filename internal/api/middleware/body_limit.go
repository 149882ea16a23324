package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

const bodyLimitMsgKey = "body_limit_msg"

// UploadLimit 上传路由的请求体大小限制中间件
//
// routes: 路由模板（c.FullPath()）→ 超限时给用户的提示。
// 必须挂在 CSRF 之前：CSRF 校验会先解析表单，限制得在第一次读取请求体前装上。
func UploadLimit(maxBytes int64, routes map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		msg, ok := routes[c.FullPath()]
		if ok && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
			c.Set(bodyLimitMsgKey, msg)
		}
		c.Next()
	}
}

// IsBodyTooLarge 解析请求体时的错误是否由 UploadLimit 触发
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// bodyLimitHit 请求体是否已在读取中触到上限
// MaxBytesReader 超限后每次 Read 都返回同一个 MaxBytesError
func bodyLimitHit(r *http.Request) bool {
	if r.Body == nil {
		return false
	}
	_, err := r.Body.Read(make([]byte, 1))
	return IsBodyTooLarge(err)
}
