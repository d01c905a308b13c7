package ai

import (
	"context"
	"fmt"
	"math"

	domsvc "ChartPulse/internal/domain/service"
	"ChartPulse/pkg/config"
	xhttp "ChartPulse/pkg/http"
)

// InsightClient asks the AI analysis collaborator for an options-implied
// volatility figure. The whole path is best-effort: callers fall back to
// historical estimation on any error.
type InsightClient struct {
	baseURL string
	client  *xhttp.Client
}

func NewInsightClient(cfg *config.Config) *InsightClient {
	return &InsightClient{
		baseURL: cfg.AI.BaseURL,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.AI.Timeout)),
	}
}

type ivRequest struct {
	Symbol string `json:"symbol"`
}

type ivResponse struct {
	Symbol string  `json:"symbol"`
	IV     float64 `json:"iv"`
}

// ImpliedVolatility returns the annualized IV the collaborator derived from
// the options chain for symbol.
func (c *InsightClient) ImpliedVolatility(ctx context.Context, symbol string) (float64, error) {
	if c.baseURL == "" {
		return 0, fmt.Errorf("ai collaborator not configured")
	}

	var resp ivResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/analysis/iv",
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: ivRequest{Symbol: symbol},
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("post iv: %w", err)
	}
	if resp.IV <= 0 || math.IsNaN(resp.IV) || math.IsInf(resp.IV, 0) {
		return 0, fmt.Errorf("iv out of range: %f", resp.IV)
	}
	return resp.IV, nil
}

var _ domsvc.IVProvider = (*InsightClient)(nil)
