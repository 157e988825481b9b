package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
)

// TrendingStock is one row of the trending stocks table.
type TrendingStock struct {
	Ticker    string    `json:"ticker"`
	Comments  int       `json:"comments"`
	Sentiment Sentiment `json:"sentiment"`
}

func (s TrendingStock) Bearish() bool {
	return strings.EqualFold(string(s.Sentiment), string(SentimentBearish))
}

// QuoteURL is where the ticker cell of the table links to.
func (s TrendingStock) QuoteURL() string {
	return "https://finance.yahoo.com/quote/" + s.Ticker
}

// MarshalJSON adds the row's quote link.
func (s TrendingStock) MarshalJSON() ([]byte, error) {
	type row TrendingStock
	return json.Marshal(struct {
		row
		QuoteURL string `json:"quote_url"`
	}{row(s), s.QuoteURL()})
}

type PriceBar struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
}

// PriceChart holds the closing price series shown after a stock lookup.
type PriceChart struct {
	Ticker string    `json:"ticker"`
	Days   int       `json:"days"`
	Labels []string  `json:"labels"`
	Closes []float64 `json:"closes"`
}

func NewPriceChart(ticker string, days int, bars []PriceBar) *PriceChart {
	chart := &PriceChart{
		Ticker: ticker,
		Days:   days,
		Labels: make([]string, 0, len(bars)),
		Closes: make([]float64, 0, len(bars)),
	}
	for _, b := range bars {
		chart.Labels = append(chart.Labels, b.Time.UTC().Format(time.DateOnly))
		chart.Closes = append(chart.Closes, b.Close)
	}
	return chart
}

func (c *PriceChart) Title() string {
	return fmt.Sprintf("%s Closing Prices Over Last %d Days", c.Ticker, c.Days)
}

type Breed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BreedInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	LifeMin     int    `json:"life_min"`
	LifeMax     int    `json:"life_max"`
}
