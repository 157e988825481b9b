package stocks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"voicenav/internal/domain"
	"voicenav/internal/infra"
)

const (
	defaultTrendingURL  = "https://tradestie.com/api/v1/apps/reddit"
	defaultPolygonURL   = "https://api.polygon.io"
	DefaultTrendingDate = "2022-04-03"

	aggregateLimit = 120
)

// Client reads trending tickers from tradestie and daily aggregates from
// polygon.io.
type Client struct {
	apiKey       string
	trendingURL  string
	polygonURL   string
	trendingDate string
	httpClient   *http.Client

	bars *expirable.LRU[string, []domain.PriceBar]
}

type Option func(*Client)

func WithTrendingURL(u string) Option {
	return func(c *Client) { c.trendingURL = u }
}

func WithPolygonURL(u string) Option {
	return func(c *Client) { c.polygonURL = strings.TrimSuffix(u, "/") }
}

// WithTrendingDate selects the day of the trending snapshot (YYYY-MM-DD).
func WithTrendingDate(date string) Option {
	return func(c *Client) {
		if date != "" {
			c.trendingDate = date
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:       apiKey,
		trendingURL:  defaultTrendingURL,
		polygonURL:   defaultPolygonURL,
		trendingDate: DefaultTrendingDate,
		httpClient:   infra.NewHTTPClient(),
		bars:         expirable.NewLRU[string, []domain.PriceBar](64, nil, 15*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type trendingRow struct {
	Comments  int    `json:"no_of_comments"`
	Sentiment string `json:"sentiment"`
	Ticker    string `json:"ticker"`
}

func (c *Client) Trending(ctx context.Context) ([]domain.TrendingStock, error) {
	u := c.trendingURL + "?" + url.Values{"date": {c.trendingDate}}.Encode()

	var rows []trendingRow
	if err := infra.GetJSON(ctx, c.httpClient, "tradestie", u, &rows); err != nil {
		return nil, fmt.Errorf("fetching trending stocks: %w", err)
	}

	stocks := make([]domain.TrendingStock, 0, len(rows))
	for _, r := range rows {
		stocks = append(stocks, domain.TrendingStock{
			Ticker:    r.Ticker,
			Comments:  r.Comments,
			Sentiment: domain.Sentiment(strings.ToLower(r.Sentiment)),
		})
	}
	return stocks, nil
}

type aggregates struct {
	Results []struct {
		T int64   `json:"t"`
		C float64 `json:"c"`
	} `json:"results"`
}

// DailyCloses returns one bar per trading day between from and to, oldest first.
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]domain.PriceBar, error) {
	fromDay := from.UTC().Format(time.DateOnly)
	toDay := to.UTC().Format(time.DateOnly)
	key := ticker + "|" + fromDay + "|" + toDay

	if bars, ok := c.bars.Get(key); ok {
		return bars, nil
	}

	q := url.Values{}
	q.Set("adjusted", "true")
	q.Set("sort", "asc")
	q.Set("limit", fmt.Sprint(aggregateLimit))
	q.Set("apiKey", c.apiKey)
	u := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?%s",
		c.polygonURL, url.PathEscape(ticker), fromDay, toDay, q.Encode())

	var agg aggregates
	if err := infra.GetJSON(ctx, c.httpClient, "polygon", u, &agg); err != nil {
		return nil, fmt.Errorf("fetching aggregates for %s: %w", ticker, err)
	}

	bars := make([]domain.PriceBar, 0, len(agg.Results))
	for _, r := range agg.Results {
		bars = append(bars, domain.PriceBar{Time: time.UnixMilli(r.T).UTC(), Close: r.C})
	}

	c.bars.Add(key, bars)
	return bars, nil
}
