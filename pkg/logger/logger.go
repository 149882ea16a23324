package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/group-shedule/schedule-site/config"
)

// NewLogger 根据 log 配置构建 Zap 日志实例
//
//   - format=console：开发用彩色输出，Debug 级别保留调用栈
//   - 其余：JSON 输出，ISO8601 时间，采样由 zap 生产配置负责
//
// 日志器以 log.name 命名，后端请求、会话等子模块再各自 Named 一层
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "time"
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	l, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("初始化日志器失败: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "schedule-site"
	}
	return l.Named(name), nil
}
