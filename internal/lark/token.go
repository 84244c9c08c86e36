package lark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"lark-base-gateway/internal/config"
)

// Tokens are refreshed this long before the platform-reported expiry so a
// token obtained just before the deadline is never sent downstream.
const tokenSafetyMargin = 60 * time.Second

// tenantTokenSource exchanges the app credentials for a tenant access token.
// It implements oauth2.TokenSource; NewTokenBroker wraps it in a
// ReuseTokenSource so a token is fetched at most once per validity window.
type tenantTokenSource struct {
	authURL   string
	appID     string
	appSecret string
	client    *http.Client
}

// NewTokenBroker creates a cached token source for the Lark open platform.
func NewTokenBroker(cfg *config.LarkConfig) (oauth2.TokenSource, error) {
	if !cfg.MessagingEnabled() {
		return nil, fmt.Errorf("%w: app_id and app_secret are required", ErrConfig)
	}

	src := &tenantTokenSource{
		authURL:   cfg.AuthURL,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		client:    &http.Client{Timeout: cfg.Timeout},
	}

	return oauth2.ReuseTokenSource(nil, src), nil
}

// Token performs one credential exchange against the tenant token endpoint.
func (s *tenantTokenSource) Token() (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"app_id":     s.appID,
		"app_secret": s.appSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}

	resp, err := s.client.Post(s.authURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrAuth, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if tr.Code != 0 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrAuth, tr.Code, tr.Msg)
	}
	if tr.TenantAccessToken == "" {
		return nil, fmt.Errorf("%w: empty token in response", ErrAuth)
	}

	return &oauth2.Token{
		AccessToken: tr.TenantAccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Duration(tr.Expire)*time.Second - tokenSafetyMargin),
	}, nil
}
