package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicenav/internal/application"
	"voicenav/internal/domain"
)

func TestSession_LoadHome(t *testing.T) {
	f := newFixture(domain.PageHome)
	f.session.Load(context.Background())

	state := f.session.Snapshot()
	assert.Equal(t, "/index.html", state.Path)
	require.NotNil(t, state.Quote)
	assert.Equal(t, "Steve Jobs", state.Quote.Author)
	assert.Empty(t, state.Trending)
}

func TestSession_LoadHomeQuoteFailure(t *testing.T) {
	f := newFixture(domain.PageHome)
	f.quotes.err = errors.New("unavailable")
	f.session.Load(context.Background())

	state := f.session.Snapshot()
	assert.Nil(t, state.Quote)
	assert.Equal(t, application.QuoteFailedMessage, state.QuoteError)
}

func TestSession_LoadStocksKeepsTopFive(t *testing.T) {
	f := newFixture(domain.PageStocks)
	f.session.Load(context.Background())

	state := f.session.Snapshot()
	require.Len(t, state.Trending, 5)
	assert.Equal(t, "GME", state.Trending[0].Ticker)
	assert.True(t, state.Trending[1].Bearish())
}

func TestSession_LoadDogs(t *testing.T) {
	f := newFixture(domain.PageDogs)
	f.session.Load(context.Background())

	state := f.session.Snapshot()
	assert.Len(t, state.DogImages, 2)
	assert.Len(t, state.Breeds, 3)
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	f := newFixture(domain.PageDogs)
	f.session.Load(context.Background())

	snap := f.session.Snapshot()
	snap.Breeds[0].Name = "changed"

	assert.Equal(t, "Affenpinscher", f.session.Snapshot().Breeds[0].Name)
}

func TestSession_LookupStock(t *testing.T) {
	f := newFixture(domain.PageStocks)

	require.NoError(t, f.session.LookupStock(context.Background(), "m s f t"))

	state := f.session.Snapshot()
	assert.Equal(t, "MSFT", state.TickerInput)
	require.NotNil(t, state.Chart)
	assert.Equal(t, []string{"2025-03-12", "2025-03-13"}, state.Chart.Labels)
	assert.Equal(t, []float64{383.27, 378.77}, state.Chart.Closes)
	assert.Equal(t, "MSFT Closing Prices Over Last 30 Days", state.Chart.Title())

	require.Len(t, f.stocks.calls, 1)
	assert.Equal(t, fixedNow, f.stocks.calls[0].to)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), f.stocks.calls[0].from)
}

func TestSession_LookupStockAlerts(t *testing.T) {
	tests := []struct {
		name   string
		ticker string
		err    error
		want   string
	}{
		{"empty ticker", "  ", nil, application.AlertEmptyTicker},
		{"no data", "zzzz", nil, application.AlertNoStockData},
		{"fetch error", "msft", errors.New("timeout"), application.AlertStockFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(domain.PageStocks)
			f.stocks.err = tt.err

			require.NoError(t, f.session.LookupStock(context.Background(), tt.ticker))

			assert.Equal(t, []string{tt.want}, f.notifier.messages)
			assert.Nil(t, f.session.Snapshot().Chart)
		})
	}
}

func TestSession_LookupStockTruncatesTicker(t *testing.T) {
	f := newFixture(domain.PageStocks)

	require.NoError(t, f.session.LookupStock(context.Background(), "alphabet"))

	assert.Equal(t, "ALPHA", f.session.Snapshot().TickerInput)
}

func TestSession_SelectBreed(t *testing.T) {
	f := newFixture(domain.PageDogs)
	f.session.Load(context.Background())

	require.NoError(t, f.session.SelectBreed(context.Background(), "retriever"))
	info := f.session.Snapshot().BreedInfo
	require.NotNil(t, info)
	assert.Equal(t, "Golden Retriever", info.Name)

	require.NoError(t, f.session.SelectBreed(context.Background(), "poodle"))
	assert.Equal(t, "Golden Retriever", f.session.Snapshot().BreedInfo.Name)
}

func TestSession_NavigateResetsPage(t *testing.T) {
	f := newFixture(domain.PageHome)
	ctx := context.Background()

	f.session.SetBackground("red")
	require.NoError(t, f.session.Alert(ctx, "hi"))
	require.NoError(t, f.session.Navigate(ctx, domain.PageDogs))

	state := f.session.Snapshot()
	assert.Equal(t, "/dogs.html", state.Path)
	assert.Empty(t, state.Background)
	assert.Equal(t, []string{"hi"}, state.Alerts)
	assert.Len(t, state.Breeds, 3)
	assert.Equal(t, []string{"dogs.html"}, f.navigator.documents)
}
