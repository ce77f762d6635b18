package model

import "time"

// Platform 发布目标平台
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformX         Platform = "x"
)

// Display 用户可见的平台名
func (p Platform) Display() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformFacebook:
		return "Facebook"
	case PlatformX:
		return "X"
	}
	return string(p)
}

// PostStatus 帖子状态机：draft/scheduled -> publishing -> published|failed
type PostStatus string

const (
	PostStatusDraft      PostStatus = "draft"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusPublishing PostStatus = "publishing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

// Post 待发布内容主体
type Post struct {
	ID       string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID   string   `json:"user_id" gorm:"type:varchar(36);index:idx_post_user;not null"`
	Platform Platform `json:"platform" gorm:"type:varchar(16);not null"`
	Content  string   `json:"content" gorm:"type:text"`
	ImageURL string   `json:"image_url,omitempty" gorm:"type:text"`

	Status       PostStatus `json:"status" gorm:"type:varchar(16);index:idx_post_status;default:draft"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty" gorm:"index:idx_post_sched"`

	PublishAttempts    int        `json:"publish_attempts" gorm:"default:0"`
	LastPublishAttempt *time.Time `json:"last_publish_attempt,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	PlatformPostID     string     `json:"platform_post_id,omitempty" gorm:"type:varchar(128)"`
	PlatformResponse   string     `json:"platform_response,omitempty" gorm:"type:text"`
	PlatformError      string     `json:"platform_error,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Post) TableName() string { return "posts" }

// Terminal 终态帖子不再被调度器选中
func (s PostStatus) Terminal() bool {
	return s == PostStatusPublished || s == PostStatusFailed
}
