// Package bithumb implements the trade source for the Bithumb Open API 2.0.
// Private endpoints are authenticated with a per-request HS256 JWT.
package bithumb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bkinvest/botboard/internal/crypto"
	"github.com/bkinvest/botboard/internal/domain"
)

const defaultBaseURL = "https://api.bithumb.com"

// Bithumb allows ~140 private requests/sec; we stay far under that.
const requestsPerSecond = 10

// Config carries the credentials and market selection for one Bithumb
// account.
type Config struct {
	AccessKey string
	SecretKey string
	Market    string // e.g. "KRW-BTC"
	BaseURL   string // optional override, for tests
}

// Client fetches executed orders and account valuation from Bithumb.
// It implements domain.TradeSource.
type Client struct {
	baseURL    string
	market     string
	auth       *crypto.JWTAuth
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Bithumb client from cfg.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	market := cfg.Market
	if market == "" {
		market = "KRW-BTC"
	}
	return &Client{
		baseURL: baseURL,
		market:  market,
		auth:    &crypto.JWTAuth{AccessKey: cfg.AccessKey, SecretKey: cfg.SecretKey},
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(requestsPerSecond, requestsPerSecond),
	}
}

// FetchTrades returns the most recent executed orders for the configured
// market, normalized to domain trades, newest first as sent by the API.
func (c *Client) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	if c.auth.AccessKey == "" || c.auth.SecretKey == "" {
		return nil, fmt.Errorf("bithumb: %w", domain.ErrUnconfigured)
	}

	params := url.Values{}
	params.Set("market", c.market)
	params.Set("state", "done")
	params.Set("limit", "50")
	params.Set("order_by", "desc")

	body, err := c.doGet(ctx, "/v1/orders", params, true)
	if err != nil {
		return nil, fmt.Errorf("bithumb: fetch orders: %w", err)
	}

	var orders []orderPayload
	if err := json.Unmarshal(body, &orders); err != nil {
		// The orders endpoint returns an object on error, an array on
		// success.
		return nil, fmt.Errorf("bithumb: orders response: %s", truncate(body))
	}

	trades := make([]domain.Trade, 0, len(orders))
	for _, o := range orders {
		if t, ok := o.normalize(); ok {
			trades = append(trades, t)
		}
	}
	return trades, nil
}

// FetchAccount values the account in KRW: coin balance at the current
// ticker price plus the KRW balance, locked amounts included.
func (c *Client) FetchAccount(ctx context.Context) (domain.AccountSnapshot, error) {
	if c.auth.AccessKey == "" || c.auth.SecretKey == "" {
		return domain.AccountSnapshot{}, fmt.Errorf("bithumb: %w", domain.ErrUnconfigured)
	}

	body, err := c.doGet(ctx, "/v1/accounts", nil, true)
	if err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("bithumb: fetch accounts: %w", err)
	}

	var accounts []accountPayload
	if err := json.Unmarshal(body, &accounts); err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("bithumb: accounts response: %s", truncate(body))
	}

	price, err := c.tickerPrice(ctx)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}

	coin := coinCurrency(c.market)
	var coinTotal, krwTotal float64
	for _, a := range accounts {
		total := parseF64(a.Balance) + parseF64(a.Locked)
		switch a.Currency {
		case coin:
			coinTotal = total
		case "KRW":
			krwTotal = total
		}
	}

	return domain.AccountSnapshot{CurrentValue: coinTotal*price + krwTotal}, nil
}

// tickerPrice reads the closing price from the public ticker endpoint.
func (c *Client) tickerPrice(ctx context.Context) (float64, error) {
	pair := coinCurrency(c.market) + "_KRW"
	body, err := c.doGet(ctx, "/public/ticker/"+pair, nil, false)
	if err != nil {
		return 0, fmt.Errorf("bithumb: fetch ticker: %w", err)
	}

	var resp tickerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("bithumb: ticker response: %s", truncate(body))
	}
	return parseF64(resp.Data.ClosingPrice), nil
}

// doGet performs a rate-limited GET, attaching the JWT Authorization header
// for private endpoints.
func (c *Client) doGet(ctx context.Context, path string, params url.Values, private bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	query := params.Encode()
	fullURL := c.baseURL + path
	if query != "" {
		fullURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if private {
		header, err := c.auth.AuthorizationHeader(query)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkStatus maps non-2xx HTTP status codes to appropriate errors.
func checkStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	var apiErr struct {
		Error struct {
			Name    json.Number `json:"name"`
			Message string      `json:"message"`
		} `json:"error"`
	}
	_ = json.Unmarshal(body, &apiErr)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, apiErr.Error.Message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, apiErr.Error.Message)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, apiErr.Error.Message)
	}
}

// coinCurrency extracts the coin side of a "KRW-BTC" style market code.
func coinCurrency(market string) string {
	for i := 0; i < len(market); i++ {
		if market[i] == '-' {
			return market[i+1:]
		}
	}
	return market
}

// parseF64 parses an API decimal string, treating anything unparseable as
// zero. Exchange payloads routinely omit or null out numeric fields.
func parseF64(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

var _ domain.TradeSource = (*Client)(nil)
