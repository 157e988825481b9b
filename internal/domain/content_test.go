package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicenav/internal/domain"
)

func TestTrendingStock_JSONIncludesQuoteURL(t *testing.T) {
	data, err := json.Marshal([]domain.TrendingStock{
		{Ticker: "GME", Comments: 120, Sentiment: domain.SentimentBearish},
	})
	require.NoError(t, err)

	assert.JSONEq(t, `[{
		"ticker": "GME",
		"comments": 120,
		"sentiment": "bearish",
		"quote_url": "https://finance.yahoo.com/quote/GME"
	}]`, string(data))
}

func TestContent_JSONKeysAreSnakeCase(t *testing.T) {
	info, err := json.Marshal(domain.BreedInfo{Name: "Beagle", Description: "Merry", LifeMin: 12, LifeMax: 15})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Beagle","description":"Merry","life_min":12,"life_max":15}`, string(info))

	day := time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)
	chart, err := json.Marshal(domain.NewPriceChart("MSFT", 30, []domain.PriceBar{{Time: day, Close: 410.5}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticker":"MSFT","days":30,"labels":["2024-03-01"],"closes":[410.5]}`, string(chart))
}

func TestPriceChart_Title(t *testing.T) {
	chart := domain.NewPriceChart("AAPL", 7, nil)
	assert.Equal(t, "AAPL Closing Prices Over Last 7 Days", chart.Title())
}
