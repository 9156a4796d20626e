// Package coinone implements the trade source for the Coinone v2.1 API.
// Private endpoints authenticate with a base64 payload header and an
// HMAC-SHA512 signature over it.
package coinone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bkinvest/botboard/internal/crypto"
	"github.com/bkinvest/botboard/internal/domain"
)

const defaultBaseURL = "https://api.coinone.co.kr"

const requestsPerSecond = 10

// Config carries the credentials and market selection for one Coinone
// account.
type Config struct {
	AccessToken string
	SecretKey   string
	Target      string // target currency, e.g. "btc"
	Quote       string // quote currency, e.g. "krw"
	BaseURL     string // optional override, for tests
}

// Client fetches completed orders and account valuation from Coinone.
// It implements domain.TradeSource.
type Client struct {
	baseURL    string
	target     string
	quote      string
	auth       *crypto.PayloadAuth
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Coinone client from cfg.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	target := cfg.Target
	if target == "" {
		target = "btc"
	}
	quote := cfg.Quote
	if quote == "" {
		quote = "krw"
	}
	return &Client{
		baseURL: baseURL,
		target:  target,
		quote:   quote,
		auth:    &crypto.PayloadAuth{AccessToken: cfg.AccessToken, SecretKey: cfg.SecretKey},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(requestsPerSecond, requestsPerSecond),
	}
}

// FetchTrades returns the completed orders for the configured pair,
// normalized to domain trades.
func (c *Client) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	if c.auth.AccessToken == "" || c.auth.SecretKey == "" {
		return nil, fmt.Errorf("coinone: %w", domain.ErrUnconfigured)
	}

	body, err := c.doPrivate(ctx, "/v2.1/order/completed_orders", map[string]any{
		"target_currency": c.target,
		"quote_currency":  c.quote,
	})
	if err != nil {
		return nil, fmt.Errorf("coinone: fetch completed orders: %w", err)
	}

	var resp completedOrdersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("coinone: completed orders response: %w", err)
	}
	if resp.Result != "success" {
		return nil, fmt.Errorf("coinone: completed orders: %s (%s)", resp.ErrorMsg, resp.ErrorCode)
	}

	trades := make([]domain.Trade, 0, len(resp.CompletedOrders))
	for _, o := range resp.CompletedOrders {
		if t, ok := o.normalize(); ok {
			trades = append(trades, t)
		}
	}
	return trades, nil
}

// FetchAccount values the account in the quote currency: coin balance at
// the last traded price plus the quote balance, limit amounts included.
func (c *Client) FetchAccount(ctx context.Context) (domain.AccountSnapshot, error) {
	if c.auth.AccessToken == "" || c.auth.SecretKey == "" {
		return domain.AccountSnapshot{}, fmt.Errorf("coinone: %w", domain.ErrUnconfigured)
	}

	body, err := c.doPrivate(ctx, "/v2.1/account/balance/all", nil)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("coinone: fetch balances: %w", err)
	}

	var resp balancesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("coinone: balances response: %w", err)
	}
	if resp.Result != "success" {
		return domain.AccountSnapshot{}, fmt.Errorf("coinone: balances: %s (%s)", resp.ErrorMsg, resp.ErrorCode)
	}

	price, err := c.lastPrice(ctx)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}

	targetCur := strings.ToUpper(c.target)
	quoteCur := strings.ToUpper(c.quote)
	var coinTotal, quoteTotal float64
	for _, b := range resp.Balances {
		// v2.1 reports "available" and "limit", not balance/locked.
		total := parseF64(b.Available) + parseF64(b.Limit)
		switch b.Currency {
		case targetCur:
			coinTotal = total
		case quoteCur:
			quoteTotal = total
		}
	}

	return domain.AccountSnapshot{CurrentValue: coinTotal*price + quoteTotal}, nil
}

// lastPrice reads the last traded price from the public ticker endpoint.
func (c *Client) lastPrice(ctx context.Context) (float64, error) {
	path := fmt.Sprintf("/public/v2/ticker_new/%s/%s", strings.ToUpper(c.quote), strings.ToUpper(c.target))
	body, err := c.doPublic(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("coinone: fetch ticker: %w", err)
	}

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("coinone: ticker response: %w", err)
	}
	if len(resp.Tickers) == 0 {
		return 0, nil
	}
	return parseF64(resp.Tickers[0].Last), nil
}

// doPrivate POSTs a signed request to a private endpoint.
func (c *Client) doPrivate(ctx context.Context, path string, params map[string]any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	signed, err := c.auth.Sign(params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(signed.Body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range signed.Headers {
		req.Header.Set(k, v)
	}

	return c.send(req)
}

// doPublic GETs a public endpoint.
func (c *Client) doPublic(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

var _ domain.TradeSource = (*Client)(nil)
