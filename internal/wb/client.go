package wb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/malinawb/malina-bot/types"
)

const (
	defaultCommonBaseURL   = "https://common-api.wildberries.ru"
	defaultSuppliesBaseURL = "https://supplies-api.wildberries.ru"
)

// Client talks to the Wildberries seller APIs: seller-info (used as the
// identity verifier for binding and restore) and the warehouse list.
// Transient failures (429, 5xx) are retried with capped exponential
// backoff; auth failures are not.
type Client struct {
	httpClient      *http.Client
	commonBaseURL   string
	suppliesBaseURL string
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient:      httpClient,
		commonBaseURL:   defaultCommonBaseURL,
		suppliesBaseURL: defaultSuppliesBaseURL,
	}
}

// WithBaseURLs overrides the API hosts, for tests.
func (c *Client) WithBaseURLs(commonBaseURL, suppliesBaseURL string) *Client {
	if commonBaseURL != "" {
		c.commonBaseURL = strings.TrimRight(commonBaseURL, "/")
	}
	if suppliesBaseURL != "" {
		c.suppliesBaseURL = strings.TrimRight(suppliesBaseURL, "/")
	}
	return c
}

func backoff() retry.Backoff {
	b := retry.NewExponential(500 * time.Millisecond)
	b = retry.WithCappedDuration(5*time.Second, b)
	return retry.WithMaxRetries(3, b)
}

func (c *Client) getJSON(ctx context.Context, url, apiKey string, dest interface{}) error {
	return retry.Do(ctx, backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(dest)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return types.ErrVerificationFailed
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return retry.RetryableError(fmt.Errorf("wildberries api: status %d", resp.StatusCode))
		default:
			return fmt.Errorf("wildberries api: status %d", resp.StatusCode)
		}
	})
}

type sellerInfoResponse struct {
	Name      string `json:"name"`
	SID       string `json:"sid"`
	TradeMark string `json:"tradeMark"`
}

// VerifySeller confirms an API key against the seller-info endpoint and
// returns the seller identity it is bound to. An invalid or revoked key
// yields ErrVerificationFailed.
func (c *Client) VerifySeller(ctx context.Context, apiKey string) (*types.SellerIdentity, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, types.ErrVerificationFailed
	}

	var info sellerInfoResponse
	if err := c.getJSON(ctx, c.commonBaseURL+"/api/v1/seller-info", apiKey, &info); err != nil {
		return nil, err
	}
	if strings.TrimSpace(info.Name) == "" {
		return nil, types.ErrVerificationFailed
	}
	return &types.SellerIdentity{
		SellerName: strings.TrimSpace(info.Name),
		TradeMark:  strings.TrimSpace(info.TradeMark),
	}, nil
}

type warehouseResponse struct {
	ID        int64  `json:"ID"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	WorkTime  string `json:"workTime"`
	AcceptsQR bool   `json:"acceptsQR"`
	IsActive  bool   `json:"isActive"`
}

// FetchWarehouses downloads the current marketplace warehouse list.
func (c *Client) FetchWarehouses(ctx context.Context, apiKey string) ([]types.Warehouse, error) {
	var raw []warehouseResponse
	if err := c.getJSON(ctx, c.suppliesBaseURL+"/api/v1/warehouses", apiKey, &raw); err != nil {
		return nil, err
	}
	warehouses := make([]types.Warehouse, 0, len(raw))
	for _, w := range raw {
		warehouses = append(warehouses, types.Warehouse{
			ID:        w.ID,
			Name:      w.Name,
			Address:   w.Address,
			WorkTime:  w.WorkTime,
			AcceptsQR: w.AcceptsQR,
			IsActive:  w.IsActive,
		})
	}
	return warehouses, nil
}
