// Package marketdata fetches quotes and intraday ranges from the Yahoo
// chart endpoint. All lookups degrade gracefully: a failed fetch means
// "no price available", never a fatal error, since posts and paper
// trades can proceed without market context.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"scryptbot/internal/api"
	"scryptbot/internal/logger"
)

// Client reads quote data from a Yahoo-compatible chart API.
type Client struct {
	client *api.Client
}

// NewClient creates a market data client. baseURL overrides the public
// endpoint, mainly for tests.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}
	return &Client{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(15*time.Second),
			api.WithHeader("User-Agent", "Mozilla/5.0 (compatible; scryptbot/1.0)"),
		),
	}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Indicators struct {
				Quote []struct {
					Low  []*float64 `json:"low"`
					High []*float64 `json:"high"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetchChart(ctx context.Context, ticker, rng, interval string) (*chartResponse, error) {
	path := fmt.Sprintf("/v8/finance/chart/%s?range=%s&interval=%s", ticker, rng, interval)
	resp, err := c.client.GET(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var r chartResponse
	if err := resp.DecodeJSON(&r); err != nil {
		return nil, err
	}
	if r.Chart.Error != nil {
		return nil, fmt.Errorf("chart api: %s: %s", r.Chart.Error.Code, r.Chart.Error.Description)
	}
	if len(r.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart api: no result for %s", ticker)
	}
	return &r, nil
}

// CurrentPrice returns the latest regular market price for ticker. The
// second return is false when no price could be obtained.
func (c *Client) CurrentPrice(ctx context.Context, ticker string) (float64, bool) {
	r, err := c.fetchChart(ctx, ticker, "1d", "1m")
	if err != nil {
		logger.Warn(ctx, "Price lookup failed", "ticker", ticker, "error", err.Error())
		return 0, false
	}
	price := r.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, false
	}
	return price, true
}

// RecentLowHigh returns today's intraday low and high for ticker. The
// third return is false when the bars are missing or all null.
func (c *Client) RecentLowHigh(ctx context.Context, ticker string) (float64, float64, bool) {
	r, err := c.fetchChart(ctx, ticker, "1d", "5m")
	if err != nil {
		logger.Warn(ctx, "Intraday range lookup failed", "ticker", ticker, "error", err.Error())
		return 0, 0, false
	}

	quotes := r.Chart.Result[0].Indicators.Quote
	if len(quotes) == 0 {
		return 0, 0, false
	}

	var (
		low, high float64
		found     bool
	)
	for _, v := range quotes[0].Low {
		if v == nil || *v <= 0 {
			continue
		}
		if !found || *v < low {
			low = *v
		}
		found = true
	}
	for _, v := range quotes[0].High {
		if v == nil || *v <= 0 {
			continue
		}
		if *v > high {
			high = *v
		}
	}
	if !found || high <= 0 {
		return 0, 0, false
	}
	return low, high, true
}
