package platform

import (
	"context"
	"encoding/json"

	"github.com/carlmjohnson/requests"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/brandpilot/internal/model"
)

// FacebookPublisher 页面发帖；带图走 /photos，纯文字走 /feed
type FacebookPublisher struct {
	baseURL string
	limiter *rate.Limiter
}

func NewFacebookPublisher(baseURL string, rps float64) *FacebookPublisher {
	if rps <= 0 {
		rps = 5
	}
	return &FacebookPublisher{baseURL: baseURL, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (p *FacebookPublisher) Name() model.Platform { return model.PlatformFacebook }

func (p *FacebookPublisher) RequiresImage() bool { return false }

func (p *FacebookPublisher) Publish(ctx context.Context, req PublishRequest) (*Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	account := req.AccountID
	if account == "" {
		account = "me"
	}

	var resp struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	var apiErr graphError

	b := requests.URL(p.baseURL).
		Bearer(req.AccessToken).
		ErrorJSON(&apiErr).
		ToJSON(&resp)
	if req.ImageURL != "" {
		b = b.Pathf("/%s/photos", account).
			BodyJSON(map[string]any{"url": req.ImageURL, "caption": req.Content})
	} else {
		b = b.Pathf("/%s/feed", account).
			BodyJSON(map[string]any{"message": req.Content})
	}
	if err := b.Fetch(ctx); err != nil {
		return nil, gatewayError(err, apiErr.Error.Message)
	}

	postID := resp.PostID
	if postID == "" {
		postID = resp.ID
	}
	raw, _ := json.Marshal(resp)
	return &Result{
		PlatformPostID: postID,
		Response:       string(raw),
		URL:            "https://www.facebook.com/" + postID,
	}, nil
}
