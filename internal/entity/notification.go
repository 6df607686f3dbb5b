package entity

import (
	"time"

	"gorm.io/datatypes"
)

// Notification 邮件通知记录
type Notification struct {
	ID            string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	OrderID       string         `gorm:"column:order_id;type:varchar(128);not null;index:idx_order_created"`
	TransitionKey string         `gorm:"column:transition_key;type:varchar(512);not null"`
	Fields        datatypes.JSON `gorm:"column:fields;type:json"`
	Recipients    datatypes.JSON `gorm:"column:recipients;type:json"`
	Subject       string         `gorm:"column:subject;type:varchar(255);not null"`
	Status        string         `gorm:"column:status;type:varchar(16);not null;default:'PENDING'"`
	ErrorMessage  string         `gorm:"column:error_message;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_order_created"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "order_notifications"
}

// 通知状态常量
const (
	NotificationStatusPending = "PENDING"
	NotificationStatusSent    = "SENT"
	NotificationStatusFailed  = "FAILED"
	NotificationStatusSkipped = "SKIPPED" // 未配置邮件服务
)
