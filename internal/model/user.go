package model

import "time"

// User 账户
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username string `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email    string `json:"email" gorm:"type:varchar(128);uniqueIndex;not null"`
	Password string `json:"-" gorm:"type:varchar(128);not null"` // bcrypt hash
	Plan     string `json:"plan" gorm:"type:varchar(16);default:free"`
	// bool 不挂 default：避免 gorm 建 INSERT 时略过零值
	IsAdmin bool `json:"is_admin"`
	Active  bool `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// 计划每月赠送的发布额度
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

func PlanMonthlyCredits(plan string) int {
	switch plan {
	case PlanPro:
		return 500
	default:
		return 30
	}
}
