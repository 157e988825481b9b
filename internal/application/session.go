package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/brunoga/deep"
	"golang.org/x/sync/errgroup"

	"voicenav/internal/domain"
)

const (
	DefaultLookupDays = 30
	trendingRows      = 5
	carouselImages    = 10
	maxTickerLen      = 5
)

// Alert texts shown by page actions.
const (
	AlertHello         = "Hello World"
	AlertEmptyTicker   = "Please enter a stock ticker."
	AlertNoStockData   = "No data found for this ticker"
	AlertStockFetch    = "An error occurred while fetching stock data."
	QuoteFailedMessage = "Failed to load quote. Please try again later."
)

// PageState is everything the current page shows.
type PageState struct {
	Path        string                 `json:"path"`
	Background  string                 `json:"background,omitempty"`
	Alerts      []string               `json:"alerts,omitempty"`
	Quote       *domain.Quote          `json:"quote,omitempty"`
	QuoteError  string                 `json:"quote_error,omitempty"`
	Trending    []domain.TrendingStock `json:"trending,omitempty"`
	TickerInput string                 `json:"ticker_input,omitempty"`
	LookupDays  int                    `json:"lookup_days"`
	Chart       *domain.PriceChart     `json:"chart,omitempty"`
	DogImages   []string               `json:"dog_images,omitempty"`
	Breeds      []domain.Breed         `json:"breeds,omitempty"`
	BreedInfo   *domain.BreedInfo      `json:"breed_info,omitempty"`
}

// Session models one browsing session over the site's pages. Its methods
// are the page actions voice commands trigger.
type Session struct {
	content   Content
	notifier  Notifier
	navigator Navigator
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	state PageState
}

type SessionOption func(*Session)

// WithLookupDays sets how many days of prices a stock lookup covers.
func WithLookupDays(days int) SessionOption {
	return func(s *Session) {
		if days > 0 {
			s.state.LookupDays = days
		}
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

func NewSession(
	start domain.Page,
	content Content,
	notifier Notifier,
	navigator Navigator,
	logger *slog.Logger,
	opts ...SessionOption,
) *Session {
	s := &Session{
		content:   content,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
		now:       time.Now,
		state: PageState{
			Path:       domain.ContextFor(start).Path,
			LookupDays: DefaultLookupDays,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Context() domain.PageContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.PageContext{Path: s.state.Path}
}

// Snapshot returns a deep copy of the page state.
func (s *Session) Snapshot() PageState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := deep.Copy(s.state)
	if err != nil {
		s.logger.Warn("copying page state", "error", err)
		return s.state
	}
	return snap
}

// Alert shows message to the user.
func (s *Session) Alert(ctx context.Context, message string) error {
	s.mu.Lock()
	s.state.Alerts = append(s.state.Alerts, message)
	s.mu.Unlock()

	s.logger.Info("alert", "message", message)
	if err := s.notifier.Notify(ctx, message); err != nil {
		return fmt.Errorf("delivering alert: %w", err)
	}
	return nil
}

func (s *Session) SetBackground(color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Background = color
}

// Navigate performs a full navigation: page state is reset, the destination
// document is opened and its content loaded.
func (s *Session) Navigate(ctx context.Context, page domain.Page) error {
	s.mu.Lock()
	s.state = PageState{
		Path:       domain.ContextFor(page).Path,
		Alerts:     s.state.Alerts,
		LookupDays: s.state.LookupDays,
	}
	s.mu.Unlock()

	s.logger.Info("navigating", "page", page, "document", page.Document())

	if err := s.navigator.Open(ctx, page.Document()); err != nil {
		s.logger.Warn("opening document", "document", page.Document(), "error", err)
	}

	s.Load(ctx)
	return nil
}

// Load fetches the content of the current page. Failed sections stay empty.
func (s *Session) Load(ctx context.Context) {
	var g errgroup.Group

	switch s.Context().Page() {
	case domain.PageHome:
		g.Go(func() error {
			s.loadQuote(ctx)
			return nil
		})
	case domain.PageStocks:
		g.Go(func() error {
			s.loadTrending(ctx)
			return nil
		})
	case domain.PageDogs:
		g.Go(func() error {
			s.loadDogImages(ctx)
			return nil
		})
		g.Go(func() error {
			s.loadBreeds(ctx)
			return nil
		})
	}

	_ = g.Wait()
}

func (s *Session) loadQuote(ctx context.Context) {
	quote, err := s.content.Quotes.Random(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Error("fetching quote", "error", err)
		s.state.QuoteError = QuoteFailedMessage
		return
	}
	s.state.Quote = quote
}

func (s *Session) loadTrending(ctx context.Context) {
	stocks, err := s.content.Stocks.Trending(ctx)
	if err != nil {
		s.logger.Error("fetching trending stocks", "error", err)
		return
	}
	if len(stocks) > trendingRows {
		stocks = stocks[:trendingRows]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Trending = stocks
}

func (s *Session) loadDogImages(ctx context.Context) {
	images, err := s.content.Dogs.RandomImages(ctx, carouselImages)
	if err != nil {
		s.logger.Error("loading dog images", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DogImages = images
}

func (s *Session) loadBreeds(ctx context.Context) {
	breeds, err := s.content.Dogs.Breeds(ctx)
	if err != nil {
		s.logger.Error("fetching breeds", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Breeds = breeds
}

// LookupStock fills the ticker input with ticker and runs a lookup, drawing
// the closing price chart for the configured number of days.
func (s *Session) LookupStock(ctx context.Context, ticker string) error {
	input := tickerInput(ticker)

	s.mu.Lock()
	s.state.TickerInput = input
	days := s.state.LookupDays
	s.mu.Unlock()

	if input == "" {
		return s.Alert(ctx, AlertEmptyTicker)
	}

	to := s.now()
	from := to.AddDate(0, 0, -days)

	bars, err := s.content.Stocks.DailyCloses(ctx, input, from, to)
	if err != nil {
		s.logger.Error("fetching stock data", "ticker", input, "error", err)
		return s.Alert(ctx, AlertStockFetch)
	}
	if len(bars) == 0 {
		return s.Alert(ctx, AlertNoStockData)
	}

	chart := domain.NewPriceChart(input, days, bars)

	s.mu.Lock()
	s.state.Chart = chart
	s.mu.Unlock()

	s.logger.Info("stock chart ready", "ticker", input, "points", len(bars))
	return nil
}

// Spoken tickers arrive as words ("m s f t"); the input field holds at most
// five upper-case characters.
func tickerInput(spoken string) string {
	input := strings.ToUpper(strings.Join(strings.Fields(spoken), ""))
	if r := []rune(input); len(r) > maxTickerLen {
		input = string(r[:maxTickerLen])
	}
	return input
}

// SelectBreed clicks the first breed button whose name contains name and
// shows that breed's details. Unknown breeds are ignored.
func (s *Session) SelectBreed(ctx context.Context, name string) error {
	want := strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	var match *domain.Breed
	for i := range s.state.Breeds {
		if strings.Contains(strings.ToLower(s.state.Breeds[i].Name), want) {
			b := s.state.Breeds[i]
			match = &b
			break
		}
	}
	s.mu.Unlock()

	if match == nil {
		s.logger.Debug("no breed button matches", "breed", want)
		return nil
	}

	info, err := s.content.Dogs.BreedInfo(ctx, match.ID)
	if err != nil {
		return fmt.Errorf("fetching breed %s: %w", match.ID, err)
	}

	s.mu.Lock()
	s.state.BreedInfo = info
	s.mu.Unlock()
	return nil
}
