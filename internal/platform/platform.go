package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/brandpilot/internal/model"
)

// PublishRequest 一次发布调用的输入
type PublishRequest struct {
	UserID      string
	Content     string
	ImageURL    string // 可空；是否必填由各平台决定
	AccessToken string
	AccountID   string // 平台侧账号/页面 ID
}

// Result 平台返回的发布结果
type Result struct {
	PlatformPostID string
	Response       string // 原始响应（透传存库）
	URL            string
}

// Publisher 平台发布适配器
type Publisher interface {
	Name() model.Platform
	// RequiresImage 平台是否强制要求图片
	RequiresImage() bool
	Publish(ctx context.Context, req PublishRequest) (*Result, error)
}

var ErrUnknownPlatform = errors.New("unknown platform")

// Registry 平台注册表；新增平台只需 Register，一处数据变更
type Registry struct {
	publishers map[model.Platform]Publisher
}

func NewRegistry(pubs ...Publisher) *Registry {
	r := &Registry{publishers: make(map[model.Platform]Publisher, len(pubs))}
	for _, p := range pubs {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Publisher) { r.publishers[p.Name()] = p }

func (r *Registry) Get(name model.Platform) (Publisher, error) {
	p, ok := r.publishers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return p, nil
}

func (r *Registry) Platforms() []model.Platform {
	res := make([]model.Platform, 0, len(r.publishers))
	for name := range r.publishers {
		res = append(res, name)
	}
	return res
}
