package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"lark-base-gateway/internal/config"
)

// BaseClient reads tables and records from a Lark Base (Bitable) app.
type BaseClient struct {
	baseURL  string
	appToken string
	tokens   oauth2.TokenSource
	client   *http.Client
}

// NewBaseClient creates a Bitable read client backed by the given token source.
func NewBaseClient(cfg *config.LarkConfig, tokens oauth2.TokenSource) *BaseClient {
	return &BaseClient{
		baseURL:  cfg.BitableBaseURL,
		appToken: cfg.BitableAppToken,
		tokens:   tokens,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// ListTables returns all tables of the configured Bitable app.
func (c *BaseClient) ListTables(ctx context.Context) ([]TableInfo, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("%s/apps/%s/tables", c.baseURL, c.appToken))
	if err != nil {
		return nil, err
	}

	var out tablesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("lark: decode tables response: %w", err)
	}
	if out.Code != 0 {
		return nil, &APIError{Code: out.Code, Msg: out.Msg}
	}

	return out.Data.Items, nil
}

// ListRecords returns the records of one table.
func (c *BaseClient) ListRecords(ctx context.Context, tableID string) ([]RecordInfo, error) {
	body, err := c.doGet(ctx, fmt.Sprintf("%s/apps/%s/tables/%s/records", c.baseURL, c.appToken, tableID))
	if err != nil {
		return nil, err
	}

	var out recordsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("lark: decode records response: %w", err)
	}
	if out.Code != 0 {
		return nil, &APIError{Code: out.Code, Msg: out.Msg}
	}

	return out.Data.Items, nil
}

// doGet obtains a fresh-enough token and performs one authenticated GET.
func (c *BaseClient) doGet(ctx context.Context, url string) ([]byte, error) {
	if c.appToken == "" {
		return nil, fmt.Errorf("%w: bitable app token is not set", ErrConfig)
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("lark: build request: %w", err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lark: request %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("lark: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lark: request %s: unexpected status %d", url, resp.StatusCode)
	}

	return body, nil
}
