package application

import (
	"context"
	"time"

	"voicenav/internal/domain"
)

type QuoteSource interface {
	Random(ctx context.Context) (*domain.Quote, error)
}

type StockSource interface {
	Trending(ctx context.Context) ([]domain.TrendingStock, error)
	DailyCloses(ctx context.Context, ticker string, from, to time.Time) ([]domain.PriceBar, error)
}

type DogSource interface {
	RandomImages(ctx context.Context, n int) ([]string, error)
	Breeds(ctx context.Context) ([]domain.Breed, error)
	BreedInfo(ctx context.Context, id string) (*domain.BreedInfo, error)
}

// Content groups the content providers a page session loads from.
type Content struct {
	Quotes QuoteSource
	Stocks StockSource
	Dogs   DogSource
}
