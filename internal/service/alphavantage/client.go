package alphavantage

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/guregu/null/v5"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	xhttp "SectorPulse/pkg/http"
)

const defaultBaseURL = "https://www.alphavantage.co"

// Client implements a BarSource backed by the Alpha Vantage daily series API.
type Client struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// New creates a new Alpha Vantage BarSource.
func New(baseURL, apiKey string, timeout time.Duration) drepo.BarSource {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type dailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Series       map[string]map[string]string `json:"Time Series (Daily)"`
}

// DailyBars fetches the full daily series for a ticker, oldest first.
func (c *Client) DailyBars(ctx context.Context, ticker string) ([]models.PriceBar, error) {
	var resp dailyResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/query",
		QueryParams: map[string][]string{
			"function":   {"TIME_SERIES_DAILY_ADJUSTED"},
			"symbol":     {ticker},
			"outputsize": {"full"},
			"apikey":     {c.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars %s: %w", ticker, err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("provider error for %s: %s", ticker, resp.ErrorMessage)
	}
	if resp.Note != "" {
		return nil, fmt.Errorf("provider throttled for %s: %s", ticker, resp.Note)
	}

	bars := make([]models.PriceBar, 0, len(resp.Series))
	for d, fields := range resp.Series {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("parse series date %q: %w", d, err)
		}
		bars = append(bars, models.PriceBar{
			Ticker:   ticker,
			Date:     date,
			Open:     parseField(fields, "1. open"),
			High:     parseField(fields, "2. high"),
			Low:      parseField(fields, "3. low"),
			Close:    parseNullField(fields, "4. close"),
			AdjClose: parseField(fields, "5. adjusted close"),
			Volume:   int64(parseField(fields, "6. volume")),
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseField(fields map[string]string, key string) float64 {
	v, err := strconv.ParseFloat(fields[key], 64)
	if err != nil {
		return 0
	}
	return v
}

// parseNullField keeps "no value" distinct from zero: closes the provider
// did not report stay null so the transform can filter them.
func parseNullField(fields map[string]string, key string) null.Float {
	s, ok := fields[key]
	if !ok || s == "" {
		return null.Float{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(v)
}
