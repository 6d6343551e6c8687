// Package pricefeed fetches current market prices from the Binance REST API.
// The base URL is configurable so the testnet (or a stub) can be used.
package pricefeed

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Failure kinds. Callers distinguish them with errors.Is; the wrapped cause
// carries the transport detail for logging.
var (
	// ErrConnection: network/transport failure or upstream 502/503/504.
	// Transient, retryable by the caller.
	ErrConnection = errors.New("Binance API connection failed")

	// ErrInvalidResponse: malformed payload or unexpected HTTP status.
	ErrInvalidResponse = errors.New("Invalid response from Binance API")

	// ErrPriceNotFound: well-formed payload lacking a price.
	ErrPriceNotFound = errors.New("price not found in Binance API response")
)

const defaultBaseURL = "https://api.binance.com"

type Client struct {
	client *resty.Client
}

// New builds a price client. No retries are configured: the caller decides
// whether a CONNECTION failure is worth retrying.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{client: client}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// CurrentPrice returns the current market price for the symbol.
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("symbol", strings.ToUpper(symbol)).
		Get("/api/v3/ticker/price")
	if err != nil {
		return decimal.Zero, errors.Wrap(ErrConnection, err.Error())
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusBadGateway, code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout:
		return decimal.Zero, errors.Wrapf(ErrConnection, "HTTP %d", code)
	case code != http.StatusOK:
		return decimal.Zero, errors.Wrapf(ErrInvalidResponse, "HTTP %d: %s", code, resp.Body())
	}

	var ticker tickerResponse
	if err := json.Unmarshal(resp.Body(), &ticker); err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidResponse, "invalid JSON: %v", err)
	}
	if ticker.Price == "" {
		return decimal.Zero, errors.Wrapf(ErrPriceNotFound, "symbol %s", symbol)
	}

	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrInvalidResponse, "invalid price value %q", ticker.Price)
	}
	return price, nil
}
