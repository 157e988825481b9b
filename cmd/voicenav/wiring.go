package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"voicenav/config"
	"voicenav/internal/application"
	"voicenav/internal/domain"
	"voicenav/internal/infra/audio"
	"voicenav/internal/infra/browser"
	"voicenav/internal/infra/dogs"
	"voicenav/internal/infra/openai"
	"voicenav/internal/infra/pushover"
	"voicenav/internal/infra/quotes"
	"voicenav/internal/infra/stocks"
	"voicenav/internal/voice"
)

// app is everything a command needs to dispatch utterances.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	session    *application.Session
	registry   *voice.Registry
	dispatcher *voice.Dispatcher
}

func loadApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Log)

	session := application.NewSession(
		domain.Page(cfg.Page.Start),
		newContent(cfg.APIs),
		newNotifier(cfg.Pushover),
		newNavigator(cfg.Page, logger),
		logger,
		application.WithLookupDays(cfg.Page.LookupDays),
	)

	registry := voice.NewRegistry()
	if err := application.RegisterCommands(registry, session); err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		session:    session,
		registry:   registry,
		dispatcher: voice.NewDispatcher(registry, logger),
	}, nil
}

func newContent(cfg config.APIsConfig) application.Content {
	quoteClient := quotes.NewClient()
	if cfg.QuotesURL != "" {
		quoteClient = quotes.NewClientWithURL(cfg.QuotesURL)
	}

	opts := []stocks.Option{stocks.WithTrendingDate(cfg.TrendingDate)}
	if cfg.TrendingURL != "" {
		opts = append(opts, stocks.WithTrendingURL(cfg.TrendingURL))
	}
	if cfg.PolygonURL != "" {
		opts = append(opts, stocks.WithPolygonURL(cfg.PolygonURL))
	}

	dogClient := dogs.NewClient()
	if cfg.DogImagesURL != "" || cfg.DogBreedsURL != "" {
		dogClient = dogs.NewClientWithURLs(
			fallback(cfg.DogImagesURL, "https://dog.ceo/api"),
			fallback(cfg.DogBreedsURL, "https://dogapi.dog/api/v2"),
		)
	}

	return application.Content{
		Quotes: quoteClient,
		Stocks: stocks.NewClient(cfg.PolygonAPIKey, opts...),
		Dogs:   dogClient,
	}
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func newNotifier(cfg config.PushoverConfig) application.Notifier {
	if cfg.Enabled {
		return pushover.NewClient(cfg.Token, cfg.UserKey)
	}
	return &application.NoopNotifier{}
}

func newNavigator(cfg config.PageConfig, logger *slog.Logger) application.Navigator {
	if cfg.OpenBrowser {
		return browser.NewNavigator(cfg.BaseURL, logger)
	}
	return &application.NoopNavigator{}
}

func newSpeechToText(cfg config.OpenAIConfig, registry *voice.Registry, logger *slog.Logger) application.SpeechToText {
	if cfg.APIKey == "" {
		logger.Warn("no OpenAI API key, audio input will be rejected")
		return &application.NoopSTT{}
	}
	return openai.NewWhisperClient(cfg.APIKey, cfg.Language).WithVocabulary(registry.Phrases())
}

func newSource(cfg config.SourceConfig, logger *slog.Logger) application.UtteranceSource {
	switch cfg.Kind {
	case "dir":
		return audio.NewDirSource(cfg.Dir, logger)
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, logger)
	default:
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.QueueSize, logger)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    32, // MB
			MaxBackups: 3,
			MaxAge:     14,
		})
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
