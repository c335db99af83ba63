package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Metrics are the headline learning metrics.
type Metrics struct {
	OverallAccuracy    float64 `json:"overallAccuracy"`
	AverageConfidence  float64 `json:"averageConfidence"`
	WinRate            float64 `json:"winRate"`
	TotalContributions int     `json:"totalContributions"`
	DataPoints         int     `json:"dataPoints"`
	ActiveUsers        int     `json:"activeUsers"`
}

// CategoryConfidence is pricing confidence for one trade.
type CategoryConfidence struct {
	Confidence float64 `json:"confidence"`
	DataPoints int     `json:"dataPoints"`
}

// PricingConfidence is pricing confidence by trade.
type PricingConfidence struct {
	ByCategory map[string]CategoryConfidence `json:"byCategory"`
}

// MarketTrends is the price trend over the requested window.
type MarketTrends struct {
	Trends            map[string]json.RawMessage `json:"trends"`
	AggregatedTrend   []json.RawMessage          `json:"aggregatedTrend"`
	PriceChange       float64                    `json:"priceChange"`
	AverageVolatility float64                    `json:"averageVolatility"`
	Trend             string                     `json:"trend"`
}

// OutcomeCounts counts bid outcomes by kind.
type OutcomeCounts struct {
	Outcomes map[string]int `json:"outcomes"`
}

// Contributors lists the most active contributors.
type Contributors struct {
	TopContributors   []json.RawMessage `json:"topContributors"`
	TotalContributors int               `json:"totalContributors"`
}

// Analytics is the dashboard payload. Fallbacks names the sections that were
// replaced by defaults because their endpoint failed.
type Analytics struct {
	Metrics           Metrics           `json:"metrics"`
	PricingConfidence PricingConfidence `json:"pricingConfidence"`
	MarketTrends      MarketTrends      `json:"marketTrends"`
	Outcomes          OutcomeCounts     `json:"outcomes"`
	Contributors      Contributors      `json:"contributors"`
	Fallbacks         []string          `json:"fallbacks"`
}

// DefaultAnalytics returns the values shown when the backend has no data.
func DefaultAnalytics() Analytics {
	return Analytics{
		Metrics: Metrics{OverallAccuracy: 0.85, AverageConfidence: 0.72, WinRate: 0.32},
		PricingConfidence: PricingConfidence{ByCategory: map[string]CategoryConfidence{
			"Concrete":   {Confidence: 0.82, DataPoints: 45},
			"Electrical": {Confidence: 0.78, DataPoints: 38},
			"Plumbing":   {Confidence: 0.65, DataPoints: 22},
			"HVAC":       {Confidence: 0.71, DataPoints: 31},
			"Framing":    {Confidence: 0.88, DataPoints: 67},
		}},
		MarketTrends: MarketTrends{
			Trends:          map[string]json.RawMessage{},
			AggregatedTrend: []json.RawMessage{},
			Trend:           "stable",
		},
		Outcomes: OutcomeCounts{Outcomes: map[string]int{
			"won": 0, "lost_price": 0, "lost_other": 0, "pending": 0,
		}},
		Contributors: Contributors{TopContributors: []json.RawMessage{}},
		Fallbacks:    []string{},
	}
}

// Analytics fetches every dashboard section in parallel. A failing section is
// replaced by its default and never fails the whole call.
func (c *Client) Analytics(ctx context.Context, days int, region string) Analytics {
	if days <= 0 {
		days = 30
	}
	if region == "" {
		region = "all"
	}
	trendsQuery := url.Values{"days": {strconv.Itoa(days)}, "region": {region}}.Encode()

	defaults := DefaultAnalytics()
	result := DefaultAnalytics()
	sections := []struct {
		name string
		path string
		out  any
	}{
		{"metrics", "/api/analytics/metrics", &result.Metrics},
		{"pricing-confidence", "/api/analytics/pricing-confidence", &result.PricingConfidence},
		{"market-trends", "/api/analytics/market-trends?" + trendsQuery, &result.MarketTrends},
		{"outcomes", "/api/analytics/outcomes", &result.Outcomes},
		{"contributors", "/api/analytics/contributors", &result.Contributors},
	}
	failed := make([]bool, len(sections))

	var g errgroup.Group
	for i, s := range sections {
		g.Go(func() error {
			if err := c.doJSON(ctx, http.MethodGet, s.path, nil, s.out); err != nil {
				c.logger.Warn("analytics section unavailable, using defaults", "section", s.name, "error", err)
				failed[i] = true
			}
			return nil
		})
	}
	_ = g.Wait()

	// Reset failed sections; a partial decode may have touched them.
	for i, s := range sections {
		if !failed[i] {
			continue
		}
		result.Fallbacks = append(result.Fallbacks, s.name)
		switch s.name {
		case "metrics":
			result.Metrics = defaults.Metrics
		case "pricing-confidence":
			result.PricingConfidence = defaults.PricingConfidence
		case "market-trends":
			result.MarketTrends = defaults.MarketTrends
		case "outcomes":
			result.Outcomes = defaults.Outcomes
		case "contributors":
			result.Contributors = defaults.Contributors
		}
	}
	return result
}
