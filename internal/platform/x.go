package platform

import (
	"context"
	"encoding/json"

	"github.com/carlmjohnson/requests"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/brandpilot/internal/model"
)

// xError X API v2 错误体
type xError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// XPublisher 发推；图片可选（作为附链处理）
type XPublisher struct {
	baseURL string
	limiter *rate.Limiter
}

func NewXPublisher(baseURL string, rps float64) *XPublisher {
	if rps <= 0 {
		rps = 2
	}
	return &XPublisher{baseURL: baseURL, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (p *XPublisher) Name() model.Platform { return model.PlatformX }

func (p *XPublisher) RequiresImage() bool { return false }

func (p *XPublisher) Publish(ctx context.Context, req PublishRequest) (*Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	text := req.Content
	if req.ImageURL != "" {
		text += "\n" + req.ImageURL
	}

	var resp struct {
		Data struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"data"`
	}
	var apiErr xError
	err := requests.URL(p.baseURL).
		Path("/2/tweets").
		Bearer(req.AccessToken).
		BodyJSON(map[string]any{"text": text}).
		ErrorJSON(&apiErr).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		msg := apiErr.Detail
		if msg == "" {
			msg = apiErr.Title
		}
		return nil, gatewayError(err, msg)
	}

	raw, _ := json.Marshal(resp)
	return &Result{
		PlatformPostID: resp.Data.ID,
		Response:       string(raw),
		URL:            "https://x.com/i/status/" + resp.Data.ID,
	}, nil
}
