package eodhd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"ChartPulse/internal/domain/models"
	drepo "ChartPulse/internal/domain/repository"
	xhttp "ChartPulse/pkg/http"
	"ChartPulse/pkg/util"

	"github.com/tidwall/gjson"
)

// Client implements a MarketSource backed by the EODHD REST API.
type Client struct {
	baseURL  string
	apiToken string
	client   *xhttp.Client
	metrics  drepo.Metrics
}

// New creates a new EODHD MarketSource.
func New(baseURL, apiToken string, timeout time.Duration, metrics drepo.Metrics) drepo.MarketSource {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		metrics:  metrics,
	}
}

// LatestQuote fetches the realtime (delayed) quote for a provider symbol.
func (c *Client) LatestQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/real-time/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"api_token": {c.apiToken},
			"fmt":       {"json"},
		},
	}, &body)
	if err != nil {
		c.record("quote", err)
		return nil, classify("quote", err)
	}
	c.record("quote", nil)

	q, err := parseQuote(symbol, body)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordLastPrice(symbol, q.Price)
	}
	return q, nil
}

// EODCandles fetches the raw end-of-day candle payload for a date range.
func (c *Client) EODCandles(ctx context.Context, symbol string, from, to time.Time) ([]byte, error) {
	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/eod/%s", c.baseURL, symbol),
		QueryParams: map[string][]string{
			"api_token": {c.apiToken},
			"fmt":       {"json"},
			"from":      {util.FormatDate(from)},
			"to":        {util.FormatDate(to)},
			"period":    {"d"},
		},
	}, &body)
	if err != nil {
		c.record("eod", err)
		return nil, classify("eod", err)
	}
	c.record("eod", nil)
	return body, nil
}

// IntradayCandles fetches the raw intraday payload at the given interval.
func (c *Client) IntradayCandles(ctx context.Context, symbol, interval string, from, to time.Time) ([]byte, error) {
	params := map[string][]string{
		"api_token": {c.apiToken},
		"fmt":       {"json"},
		"interval":  {interval},
	}
	if !from.IsZero() {
		params["from"] = []string{fmt.Sprintf("%d", from.Unix())}
	}
	if !to.IsZero() {
		params["to"] = []string{fmt.Sprintf("%d", to.Unix())}
	}

	var body []byte
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/intraday/%s", c.baseURL, symbol),
		QueryParams: params,
	}, &body)
	if err != nil {
		c.record("intraday", err)
		return nil, classify("intraday", err)
	}
	c.record("intraday", nil)
	return body, nil
}

func (c *Client) record(endpoint string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.RecordUpstreamRequest(endpoint, outcome)
}

// classify folds transport and non-2xx failures into the domain taxonomy.
// A 404 from the provider means the symbol has no data, not an outage.
func classify(endpoint string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		if se.Code == 404 {
			return fmt.Errorf("%s: %w", endpoint, models.ErrNoData)
		}
		return fmt.Errorf("%s: status %d: %w", endpoint, se.Code, models.ErrUpstreamUnavailable)
	}
	return fmt.Errorf("%s: %v: %w", endpoint, err, models.ErrUpstreamUnavailable)
}

// parseQuote tolerates the field-name variants the quote endpoint uses.
func parseQuote(symbol string, body []byte) (*models.Quote, error) {
	parsed := gjson.ParseBytes(body)
	if parsed.IsArray() {
		arr := parsed.Array()
		if len(arr) == 0 {
			return nil, fmt.Errorf("quote: empty payload: %w", models.ErrNoData)
		}
		parsed = arr[0]
	}

	price := firstNumber(parsed, "close", "c", "price", "last")
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, fmt.Errorf("quote: no usable price: %w", models.ErrInvalidResponse)
	}

	ts := parsed.Get("timestamp").Int()
	if ts <= 0 {
		ts = time.Now().Unix()
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     price,
		Change:    firstNumber(parsed, "change"),
		ChangePct: firstNumber(parsed, "change_p"),
		Timestamp: ts,
	}, nil
}

func firstNumber(rec gjson.Result, fields ...string) float64 {
	for _, f := range fields {
		if v := rec.Get(f); v.Exists() && v.Type == gjson.Number {
			return v.Float()
		}
	}
	return 0
}
