package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

func newRestyClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == 429 {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return d, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})
}

// newRequest applies per-request headers: API key on mainnet and the JWT
// once authenticated.
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "gopredict")
	if c.apiKey != "" {
		r.SetHeader("x-api-key", c.apiKey)
	}
	if tok := c.currentJWT(); tok != "" {
		r.SetHeader("Authorization", "Bearer "+tok)
	}
	return r
}

// apiError turns a non-2xx response into an error carrying the remote body
// verbatim, so rejection reasons survive to the caller.
func apiError(resp *resty.Response) error {
	var body any
	raw := resp.Body()
	_ = json.Unmarshal(raw, &body)
	if body == nil {
		body = string(raw)
	}
	return errors.Errorf("http %d: %v", resp.StatusCode(), body)
}
