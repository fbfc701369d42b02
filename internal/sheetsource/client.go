package sheetsource

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creator-crm/internal/config"
	"creator-crm/internal/constants"
	"creator-crm/internal/domain"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

// Client pulls creator rows from the external spreadsheet-sync API. Rows
// come back as loosely shaped JSON objects; everything is pushed through
// the domain mappers before it reaches storage.
type Client struct {
	baseURL string
	apiKey  string
	client  *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.SheetAPIURL,
		apiKey:  cfg.SheetAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// FetchCreators retrieves all rows for one sheet source, retrying transient
// failures with exponential backoff.
func (c *Client) FetchCreators(ctx context.Context, source string) ([]domain.Creator, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("sheet source client is not configured")
	}

	url := fmt.Sprintf("%s/rows?source=%s", c.baseURL, source)

	var rows []map[string]any
	backoff := retry.WithMaxRetries(constants.SheetSyncRetries, retry.NewExponential(constants.SheetSyncRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		body, err := c.get(url)
		if err != nil {
			return retry.RetryableError(err)
		}
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("failed to decode sheet rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet rows: %w", err)
	}

	creators := make([]domain.Creator, 0, len(rows))
	for _, row := range rows {
		creator := domain.MapCreator(row)
		if creator.SheetSource == "" {
			creator.SheetSource = source
		}
		creators = append(creators, creator)
	}
	return creators, nil
}

func (c *Client) get(url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if err := c.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
		return nil, fmt.Errorf("sheet API request failed: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("sheet API returned status %d", resp.StatusCode())
	}

	return append([]byte(nil), resp.Body()...), nil
}
