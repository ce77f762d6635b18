package model

import "time"

// PlatformCredential 用户的平台访问凭证（vault）
type PlatformCredential struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string   `json:"user_id" gorm:"type:varchar(36);index:idx_cred_user;uniqueIndex:ux_cred_user_platform;not null"`
	Platform    Platform `json:"platform" gorm:"type:varchar(16);uniqueIndex:ux_cred_user_platform;not null"`
	AccessToken string   `json:"-" gorm:"type:text;not null"`
	AccountID   string   `json:"account_id" gorm:"type:varchar(128)"` // 平台侧账号/页面 ID

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PlatformCredential) TableName() string { return "platform_credentials" }

// MaskedToken 脱敏展示，仅保留尾部 4 位
func (c *PlatformCredential) MaskedToken() string {
	if len(c.AccessToken) <= 4 {
		return "****"
	}
	return "****" + c.AccessToken[len(c.AccessToken)-4:]
}
