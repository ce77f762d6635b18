package platform

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/carlmjohnson/requests"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/brandpilot/internal/model"
)

// graphError Graph API 错误体（Instagram/Facebook 共用）
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Instagram 发布走两段式：先建媒体容器，再 publish。
// Instagram 不支持纯文字帖，图片必填。
type InstagramPublisher struct {
	baseURL string
	limiter *rate.Limiter
}

func NewInstagramPublisher(baseURL string, rps float64) *InstagramPublisher {
	if rps <= 0 {
		rps = 5
	}
	return &InstagramPublisher{baseURL: baseURL, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (p *InstagramPublisher) Name() model.Platform { return model.PlatformInstagram }

func (p *InstagramPublisher) RequiresImage() bool { return true }

func (p *InstagramPublisher) Publish(ctx context.Context, req PublishRequest) (*Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	account := req.AccountID
	if account == "" {
		account = "me"
	}

	// 第一步：创建媒体容器
	var container struct {
		ID string `json:"id"`
	}
	var apiErr graphError
	err := requests.URL(p.baseURL).
		Pathf("/%s/media", account).
		Bearer(req.AccessToken).
		Param("image_url", req.ImageURL).
		Param("caption", req.Content).
		BodyJSON(map[string]any{}).
		ErrorJSON(&apiErr).
		ToJSON(&container).
		Fetch(ctx)
	if err != nil {
		return nil, gatewayError(err, apiErr.Error.Message)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// 第二步：发布容器
	var published struct {
		ID string `json:"id"`
	}
	apiErr = graphError{}
	err = requests.URL(p.baseURL).
		Pathf("/%s/media_publish", account).
		Bearer(req.AccessToken).
		Param("creation_id", container.ID).
		BodyJSON(map[string]any{}).
		ErrorJSON(&apiErr).
		ToJSON(&published).
		Fetch(ctx)
	if err != nil {
		return nil, gatewayError(err, apiErr.Error.Message)
	}

	raw, _ := json.Marshal(published)
	return &Result{
		PlatformPostID: published.ID,
		Response:       string(raw),
		URL:            "https://www.instagram.com/p/" + published.ID,
	}, nil
}

// gatewayError 优先返回平台给出的可读错误信息
func gatewayError(err error, message string) error {
	if message != "" {
		return errors.New(message)
	}
	return err
}
