package model

import "time"

// UserSetting 用户运行时开关（目前仅自动发布）
type UserSetting struct {
	UserID          string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	AutoPostEnabled bool      `json:"auto_post_enabled"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (UserSetting) TableName() string { return "user_settings" }
