// Package kis implements the trade source for the Korea Investment &
// Securities (KIS) open API. Requests carry an OAuth2 bearer token obtained
// with the client-credentials grant; the token is cached with a TTL in an
// injected store so restarts and replicas share it.
package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bkinvest/botboard/internal/domain"
)

// Default base URL targets the paper-trading environment.
const defaultBaseURL = "https://openapivts.koreainvestment.com:29443"

const (
	requestsPerSecond = 5

	// tokenCacheKey is the TokenCache key for the shared access token.
	tokenCacheKey = "kis:access_token"

	// tokenExpiryBuffer is subtracted from the token lifetime so we never
	// present a token that is about to lapse mid-request.
	tokenExpiryBuffer = 10 * time.Minute

	// lookbackDays is how far back the order-history query reaches.
	lookbackDays = 30

	// Paper-trading transaction IDs.
	trIDBalance = "VTTC8434R"
	trIDOrders  = "VTTC8001R"
)

// Config carries the credentials and account selection for one KIS account.
type Config struct {
	AppKey     string
	AppSecret  string
	AccountNo  string // CANO, the 8-digit account number
	ProductCd  string // ACNT_PRDT_CD, defaults to "01"
	BaseURL    string // optional override, for tests
}

// Client fetches executed orders and account valuation from KIS.
// It implements domain.TradeSource.
type Client struct {
	baseURL    string
	appKey     string
	appSecret  string
	accountNo  string
	productCd  string
	tokens     domain.TokenCache
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time
}

// NewClient creates a KIS client from cfg. tokens holds the shared OAuth
// access token between refreshes.
func NewClient(cfg Config, tokens domain.TokenCache) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	productCd := cfg.ProductCd
	if productCd == "" {
		productCd = "01"
	}
	return &Client{
		baseURL:   baseURL,
		appKey:    cfg.AppKey,
		appSecret: cfg.AppSecret,
		accountNo: cfg.AccountNo,
		productCd: productCd,
		tokens:    tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(requestsPerSecond, requestsPerSecond),
		now:     time.Now,
	}
}

// FetchTrades returns the executed orders of the last 30 days, normalized
// to domain trades.
func (c *Client) FetchTrades(ctx context.Context) ([]domain.Trade, error) {
	if !c.configured() {
		return nil, fmt.Errorf("kis: %w", domain.ErrUnconfigured)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	end := c.now()
	start := end.AddDate(0, 0, -lookbackDays)

	params := url.Values{}
	params.Set("CANO", c.accountNo)
	params.Set("ACNT_PRDT_CD", c.productCd)
	params.Set("INQR_STRT_DT", start.Format("20060102"))
	params.Set("INQR_END_DT", end.Format("20060102"))
	params.Set("SLL_BUY_DVSN_CD", "00")
	params.Set("INQR_DVSN", "00")
	params.Set("PDNO", "")
	params.Set("CCLD_DVSN", "00")
	params.Set("ORD_GNO_BRNO", "")
	params.Set("ODNO", "")
	params.Set("INQR_DVSN_3", "00")
	params.Set("INQR_DVSN_1", "")
	params.Set("CTX_AREA_FK100", "")
	params.Set("CTX_AREA_NK100", "")

	var resp ordersResponse
	if err := c.doGet(ctx, token, "/uapi/domestic-stock/v1/trading/inquire-daily-ccld", trIDOrders, params, &resp); err != nil {
		return nil, fmt.Errorf("kis: fetch orders: %w", err)
	}

	trades := make([]domain.Trade, 0, len(resp.Output1))
	for _, o := range resp.Output1 {
		if t, ok := o.normalize(); ok {
			trades = append(trades, t)
		}
	}
	return trades, nil
}

// FetchAccount returns the total account valuation: securities at market
// value plus available cash.
func (c *Client) FetchAccount(ctx context.Context) (domain.AccountSnapshot, error) {
	if !c.configured() {
		return domain.AccountSnapshot{}, fmt.Errorf("kis: %w", domain.ErrUnconfigured)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}

	params := url.Values{}
	params.Set("CANO", c.accountNo)
	params.Set("ACNT_PRDT_CD", c.productCd)
	params.Set("AFHR_FLPR_YN", "N")
	params.Set("OFL_YN", "")
	params.Set("INQR_DVSN", "02")
	params.Set("UNPR_DVSN", "01")
	params.Set("FUND_STTL_ICLD_YN", "N")
	params.Set("FNCG_AMT_AUTO_RDPT_YN", "N")
	params.Set("PRCS_DVSN", "00")
	params.Set("CTX_AREA_FK100", "")
	params.Set("CTX_AREA_NK100", "")

	var resp balanceResponse
	if err := c.doGet(ctx, token, "/uapi/domestic-stock/v1/trading/inquire-balance", trIDBalance, params, &resp); err != nil {
		return domain.AccountSnapshot{}, fmt.Errorf("kis: fetch balance: %w", err)
	}

	var summary balanceSummary
	if len(resp.Output2) > 0 {
		summary = resp.Output2[0]
	}
	total := parseF64(summary.SecuritiesEval) + parseF64(summary.AvailableCash)

	return domain.AccountSnapshot{CurrentValue: total}, nil
}

func (c *Client) configured() bool {
	return c.appKey != "" && c.appSecret != "" && c.accountNo != ""
}

// accessToken returns a valid bearer token, minting a new one through the
// client-credentials grant when the cache misses.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	token, err := c.tokens.GetToken(ctx, tokenCacheKey)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", fmt.Errorf("kis: token cache: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("kis: rate limiter: %w", err)
	}

	reqBody, err := json.Marshal(map[string]string{
		"grant_type": "client_credentials",
		"appkey":     c.appKey,
		"appsecret":  c.appSecret,
	})
	if err != nil {
		return "", fmt.Errorf("kis: marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/tokenP", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("kis: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("kis: token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("kis: read token response: %w", err)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil || tok.AccessToken == "" {
		return "", fmt.Errorf("kis: token error: %s", truncate(body))
	}

	ttl := tok.expiry() - tokenExpiryBuffer
	if ttl > 0 {
		if err := c.tokens.SetToken(ctx, tokenCacheKey, tok.AccessToken, ttl); err != nil {
			return "", fmt.Errorf("kis: token cache: %w", err)
		}
	}
	return tok.AccessToken, nil
}

// doGet performs an authenticated GET and decodes the envelope, checking
// the API-level return code.
func (c *Client) doGet(ctx context.Context, token, path, trID string, params url.Values, out apiEnvelope) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("appkey", c.appKey)
	req.Header.Set("appsecret", c.appSecret)
	req.Header.Set("tr_id", trID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: HTTP %d", domain.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: HTTP %d", domain.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if code, msg := out.returnCode(); code != "0" {
		return fmt.Errorf("api error (%s): %s", trID, msg)
	}
	return nil
}

// parseF64 parses an API decimal string, treating anything unparseable as
// zero.
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
