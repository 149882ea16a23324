package logger

import (
	"testing"

	"github.com/group-shedule/schedule-site/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{name: "json", cfg: config.LogConfig{Level: "info", Format: "json"}},
		{name: "console", cfg: config.LogConfig{Level: "debug", Format: "console"}},
		{name: "自定义名称", cfg: config.LogConfig{Level: "warn", Format: "json", Name: "schedule-site-2"}},
		{name: "非法级别", cfg: config.LogConfig{Level: "loud", Format: "json"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && l == nil {
				t.Error("成功时 logger 不应为 nil")
			}
		})
	}
}
