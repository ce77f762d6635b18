package model

import "time"

// NotificationKind 通知类别
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationInfo    NotificationKind = "info"
)

// Notification 用户通知（调度器发布结果等）
type Notification struct {
	ID      string           `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID  string           `json:"user_id" gorm:"type:varchar(36);index:idx_notif_user;not null"`
	Kind    NotificationKind `json:"kind" gorm:"type:varchar(16)"`
	Message string           `json:"message" gorm:"type:text"`
	Read    bool             `json:"read"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Notification) TableName() string { return "notifications" }
