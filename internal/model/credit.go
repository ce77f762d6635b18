package model

import "time"

// CreditEntryType 额度流水类型
const (
	CreditEntryRefill  = "refill"  // 月度计划补充
	CreditEntryPublish = "publish" // 发布扣减
)

// CreditLedger 发布额度流水；余额 = sum(delta)
type CreditLedger struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string `json:"user_id" gorm:"type:varchar(36);index:idx_credit_user;not null"`
	Delta  int    `json:"delta" gorm:"not null"`
	Type   string `json:"type" gorm:"type:varchar(16);not null"`
	PostID string `json:"post_id,omitempty" gorm:"type:varchar(36)"` // 扣减关联的帖子

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (CreditLedger) TableName() string { return "credit_ledger" }
