// REST CLIENT FOR BITGET USDT-M FUTURES (API v2)
// RESTY + RETRY ON RATE LIMIT
package connectors

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"signalrelay/src/model"
)

// -----------------------------
// CONFIG
// -----------------------------
const (
	bitgetRetryBaseDelay  = 500 * time.Millisecond
	bitgetRetryMaxBackoff = 4 * time.Second

	pathPlaceOrder    = "/api/v2/mix/order/place-order"
	pathSetLeverage   = "/api/v2/mix/account/set-leverage"
	pathSetMarginMode = "/api/v2/mix/account/set-margin-mode"
)

// ErrExchangeNotConfigured is returned by every call when API credentials are missing.
var ErrExchangeNotConfigured = errors.New("bitget api credentials not configured")

// -----------------------------
// API RESPONSE WRAPPER
// -----------------------------
type BitgetResponse struct {
	Code        string          `json:"code"`
	Msg         string          `json:"msg"`
	RequestTime int64           `json:"requestTime"`
	Data        json.RawMessage `json:"data"`
}

type bitgetOrderData struct {
	OrderID   string `json:"orderId"`
	ClientOid string `json:"clientOid"`
}

// -----------------------------
// AUTHENTICATED CLIENT
// -----------------------------
type BitgetConnector struct {
	apiKey      string
	apiSecret   string
	passphrase  string
	baseURL     string
	productType string
	marginCoin  string
	locale      string
	http        *resty.Client
	now         func() time.Time
}

// shouldRetry retries transport errors and rate limiting only. Orders carry a clientOid,
// so a resend after a lost response is deduplicated by the exchange.
func shouldRetry(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	return r.StatusCode() == http.StatusTooManyRequests
}

func NewBitgetConnector(cfg Config) *BitgetConnector {
	baseURL := strings.TrimRight(cfg.BitgetBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.bitget.com"
		logger.Warnf("No Bitget base URL provided, using default: %s", baseURL)
	}

	timeout := cfg.BitgetHTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.BitgetRetryCount).
		SetRetryWaitTime(bitgetRetryBaseDelay).
		SetRetryMaxWaitTime(bitgetRetryMaxBackoff).
		AddRetryCondition(shouldRetry)

	c := &BitgetConnector{
		apiKey:      cfg.BitgetAPIKey,
		apiSecret:   cfg.BitgetAPISecret,
		passphrase:  cfg.BitgetPassphrase,
		baseURL:     baseURL,
		productType: valueOr(cfg.BitgetProductType, "USDT-FUTURES"),
		marginCoin:  valueOr(cfg.BitgetMarginCoin, "USDT"),
		locale:      valueOr(cfg.BitgetLocale, "en-US"),
		http:        httpClient,
		now:         time.Now,
	}

	if !c.Configured() {
		logger.Warn("Bitget API credentials missing, orders will be reported as failed until they are set")
	}

	return c
}

// Configured reports whether the connector can sign requests.
func (c *BitgetConnector) Configured() bool {
	return c.apiKey != "" && c.apiSecret != "" && c.passphrase != ""
}

// signBitget builds ACCESS-SIGN: base64(HMAC-SHA256(timestamp + METHOD + path[?query] + body)).
func signBitget(timestamp, method, path, query, body, secret string) string {
	prehash := timestamp + strings.ToUpper(method) + path
	if query != "" {
		prehash += "?" + query
	}
	prehash += body

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(prehash))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *BitgetConnector) doRequest(ctx context.Context, method, path, query string, body []byte) (*BitgetResponse, []byte, error) {
	if !c.Configured() {
		return nil, nil, ErrExchangeNotConfigured
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	sig := signBitget(timestamp, method, path, query, string(body), c.apiSecret)

	req := c.http.R().
		SetContext(ctx).
		SetHeader("ACCESS-KEY", c.apiKey).
		SetHeader("ACCESS-SIGN", sig).
		SetHeader("ACCESS-TIMESTAMP", timestamp).
		SetHeader("ACCESS-PASSPHRASE", c.passphrase).
		SetHeader("locale", c.locale)

	if query != "" {
		req = req.SetQueryString(query)
	}
	if body != nil {
		req = req.SetBody(body).SetHeader("Content-Type", "application/json")
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, nil, err
	}

	raw := resp.Body()

	if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500 {
		return nil, raw, fmt.Errorf("HTTP %d: %s", resp.StatusCode(), string(raw))
	}

	// Bitget answers business errors with 4xx and a regular JSON envelope.
	var apiResp BitgetResponse
	if err := json.Unmarshal(raw, &apiResp); err != nil || apiResp.Code == "" {
		return nil, raw, fmt.Errorf("HTTP %d: unexpected body: %s", resp.StatusCode(), string(raw))
	}

	return &apiResp, raw, nil
}

func (c *BitgetConnector) post(ctx context.Context, path string, payload map[string]string) (model.ExchangeResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return model.ExchangeResult{}, err
	}

	resp, raw, err := c.doRequest(ctx, http.MethodPost, path, "", b)
	if err != nil {
		return model.ExchangeResult{Raw: string(raw)}, err
	}

	result := model.ExchangeResult{
		Success: resp.Code == BitgetSuccessCode,
		Code:    resp.Code,
		Msg:     resp.Msg,
		Raw:     string(raw),
	}

	var data bitgetOrderData
	if len(resp.Data) > 0 && json.Unmarshal(resp.Data, &data) == nil {
		result.OrderID = data.OrderID
	}

	fields := logger.Fields{
		"path": path,
		"code": resp.Code,
		"msg":  resp.Msg,
	}
	if result.Success {
		logger.WithFields(fields).Debug("bitget request succeeded")
	} else {
		fields["error_name"] = GetErrorMsg(resp.Code)
		logger.WithFields(fields).Warn("bitget request rejected")
	}

	return result, nil
}

// -----------------------------
// TRADING METHODS
// -----------------------------

// SubmitOrder places a one-way market order. Size is sent as-is; sizing is the caller's concern.
func (c *BitgetConnector) SubmitOrder(ctx context.Context, req model.OrderRequest) (model.ExchangeResult, error) {
	marginMode := req.MarginMode
	if marginMode == "" {
		marginMode = model.MarginModeIsolated
	}

	return c.post(ctx, pathPlaceOrder, map[string]string{
		"symbol":      req.Ticker,
		"productType": c.productType,
		"marginMode":  marginMode,
		"marginCoin":  c.marginCoin,
		"size":        req.Size.String(),
		"side":        req.Side,
		"orderType":   "market",
		"clientOid":   uuid.NewString(),
	})
}

func (c *BitgetConnector) SetLeverage(ctx context.Context, ticker string, leverage int) (model.ExchangeResult, error) {
	return c.post(ctx, pathSetLeverage, map[string]string{
		"symbol":      ticker,
		"productType": c.productType,
		"marginCoin":  c.marginCoin,
		"leverage":    strconv.Itoa(leverage),
	})
}

// SetMarginMode switches a symbol between isolated and crossed margin. Bitget refuses the
// change while the symbol has open positions or orders.
func (c *BitgetConnector) SetMarginMode(ctx context.Context, ticker, marginMode string) (model.ExchangeResult, error) {
	marginMode, err := model.NormalizeMarginMode(marginMode)
	if err != nil {
		return model.ExchangeResult{}, err
	}

	return c.post(ctx, pathSetMarginMode, map[string]string{
		"symbol":      ticker,
		"productType": c.productType,
		"marginCoin":  c.marginCoin,
		"marginMode":  marginMode,
	})
}

func valueOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
