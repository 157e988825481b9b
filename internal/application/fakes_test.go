package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"voicenav/internal/application"
	"voicenav/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeQuotes struct {
	quote *domain.Quote
	err   error
}

func (f *fakeQuotes) Random(_ context.Context) (*domain.Quote, error) {
	return f.quote, f.err
}

type closesCall struct {
	ticker   string
	from, to time.Time
}

type fakeStocks struct {
	trending []domain.TrendingStock
	bars     map[string][]domain.PriceBar
	err      error

	mu    sync.Mutex
	calls []closesCall
}

func (f *fakeStocks) Trending(_ context.Context) ([]domain.TrendingStock, error) {
	return f.trending, f.err
}

func (f *fakeStocks) DailyCloses(_ context.Context, ticker string, from, to time.Time) ([]domain.PriceBar, error) {
	f.mu.Lock()
	f.calls = append(f.calls, closesCall{ticker: ticker, from: from, to: to})
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[ticker], nil
}

type fakeDogs struct {
	images []string
	breeds []domain.Breed
	info   map[string]*domain.BreedInfo
}

func (f *fakeDogs) RandomImages(_ context.Context, n int) ([]string, error) {
	if n < len(f.images) {
		return f.images[:n], nil
	}
	return f.images, nil
}

func (f *fakeDogs) Breeds(_ context.Context) ([]domain.Breed, error) {
	return f.breeds, nil
}

func (f *fakeDogs) BreedInfo(_ context.Context, id string) (*domain.BreedInfo, error) {
	if info, ok := f.info[id]; ok {
		return info, nil
	}
	return nil, errors.New("breed not found")
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(_ context.Context, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

type recordingNavigator struct {
	documents []string
}

func (r *recordingNavigator) Open(_ context.Context, document string) error {
	r.documents = append(r.documents, document)
	return nil
}

type fixture struct {
	quotes    *fakeQuotes
	stocks    *fakeStocks
	dogs      *fakeDogs
	notifier  *recordingNotifier
	navigator *recordingNavigator
	session   *application.Session
}

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newFixture(start domain.Page) *fixture {
	f := &fixture{
		quotes: &fakeQuotes{quote: &domain.Quote{Text: "Stay hungry.", Author: "Steve Jobs"}},
		stocks: &fakeStocks{
			trending: []domain.TrendingStock{
				{Ticker: "GME", Comments: 120, Sentiment: domain.SentimentBullish},
				{Ticker: "AMC", Comments: 80, Sentiment: domain.SentimentBearish},
				{Ticker: "TSLA", Comments: 60, Sentiment: domain.SentimentBullish},
				{Ticker: "AAPL", Comments: 40, Sentiment: domain.SentimentBullish},
				{Ticker: "PLTR", Comments: 20, Sentiment: domain.SentimentBearish},
				{Ticker: "NIO", Comments: 10, Sentiment: domain.SentimentBullish},
			},
			bars: map[string][]domain.PriceBar{
				"MSFT": {
					{Time: time.Date(2025, 3, 12, 4, 0, 0, 0, time.UTC), Close: 383.27},
					{Time: time.Date(2025, 3, 13, 4, 0, 0, 0, time.UTC), Close: 378.77},
				},
			},
		},
		dogs: &fakeDogs{
			images: []string{"https://images.dog.ceo/breeds/husky/1.jpg", "https://images.dog.ceo/breeds/pug/2.jpg"},
			breeds: []domain.Breed{
				{ID: "b-1", Name: "Affenpinscher"},
				{ID: "b-2", Name: "Golden Retriever"},
				{ID: "b-3", Name: "Labrador Retriever"},
			},
			info: map[string]*domain.BreedInfo{
				"b-2": {Name: "Golden Retriever", Description: "Friendly.", LifeMin: 10, LifeMax: 12},
				"b-3": {Name: "Labrador Retriever", Description: "Outgoing.", LifeMin: 10, LifeMax: 14},
			},
		},
		notifier:  &recordingNotifier{},
		navigator: &recordingNavigator{},
	}

	f.session = application.NewSession(
		start,
		application.Content{Quotes: f.quotes, Stocks: f.stocks, Dogs: f.dogs},
		f.notifier,
		f.navigator,
		discardLogger(),
		application.WithClock(func() time.Time { return fixedNow }),
	)
	return f
}
