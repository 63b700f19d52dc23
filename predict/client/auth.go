package client

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

type authMessageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

type authResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expiresAt"`
	} `json:"data"`
}

// jwtFallbackTTL is used when the API omits an expiry.
const jwtFallbackTTL = 55 * time.Minute

// Authenticate fetches the auth challenge, has the signer personal-sign it
// and trades the signature for a JWT. Subsequent requests carry the token
// until it expires.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var challenge authMessageResponse
	resp, err := c.newRequest(ctx).SetResult(&challenge).Get(EndpointAuthMessage)
	if err != nil {
		return fmt.Errorf("fetch auth message: %w", err)
	}
	if !resp.IsSuccess() || challenge.Data.Message == "" {
		return fmt.Errorf("fetch auth message: %w", apiError(resp))
	}

	sig, err := c.signer.SignMessage(ctx, []byte(challenge.Data.Message))
	if err != nil {
		return fmt.Errorf("sign auth message: %w", err)
	}

	var auth authResponse
	resp, err = c.newRequest(ctx).
		SetBody(map[string]any{
			"data": map[string]any{
				"address":   c.signer.Address().Hex(),
				"message":   challenge.Data.Message,
				"signature": hexutil.Encode(sig),
			},
		}).
		SetResult(&auth).
		Post(EndpointAuth)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	if !resp.IsSuccess() || !auth.Success || auth.Data.Token == "" {
		return fmt.Errorf("authenticate: %w", apiError(resp))
	}

	expiry := time.Now().Add(jwtFallbackTTL)
	if auth.Data.ExpiresAt > 0 {
		expiry = time.UnixMilli(auth.Data.ExpiresAt)
	}
	c.setJWT(auth.Data.Token, expiry)
	return nil
}

// Authenticated reports whether a non-expired JWT is held.
func (c *Client) Authenticated() bool {
	return c.currentJWT() != ""
}
