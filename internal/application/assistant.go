package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"voicenav/internal/voice"
)

// ErrSourceClosed is returned by an UtteranceSource that will deliver nothing more.
var ErrSourceClosed = errors.New("utterance source closed")

// Assistant pulls utterances from a source and dispatches them one at a time
// while listening is on.
type Assistant struct {
	source     UtteranceSource
	stt        SpeechToText
	dispatcher *voice.Dispatcher
	session    *Session
	logger     *slog.Logger

	mu        sync.Mutex
	listening bool
}

func NewAssistant(
	source UtteranceSource,
	stt SpeechToText,
	dispatcher *voice.Dispatcher,
	session *Session,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		source:     source,
		stt:        stt,
		dispatcher: dispatcher,
		session:    session,
		logger:     logger,
	}
}

// Start turns listening on. Calling it while listening does nothing.
func (a *Assistant) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.listening {
		return
	}
	a.listening = true
	a.logger.Info("listening started")
}

// Abort turns listening off. Input arriving afterwards is dropped; a
// dispatch already running completes.
func (a *Assistant) Abort() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.listening {
		return
	}
	a.listening = false
	a.logger.Info("listening stopped")
}

func (a *Assistant) Listening() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("loading page", "path", a.session.Context().Path)
	a.session.Load(ctx)

	a.logger.Info("starting utterance source", "source", a.source.Name())
	if err := a.source.Start(ctx); err != nil {
		return fmt.Errorf("starting source: %w", err)
	}
	defer a.source.Stop()

	a.logger.Info("assistant ready", "commands", a.dispatcher.Registry().Len(), "listening", a.Listening())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := a.processOne(ctx); err != nil {
				if errors.Is(err, ErrSourceClosed) {
					return err
				}
				if ctx.Err() == nil {
					a.logger.Error("processing utterance", "error", err)
				}
			}
		}
	}
}

func (a *Assistant) processOne(ctx context.Context) error {
	data, err := a.source.Next(ctx)
	if err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	if !a.Listening() {
		a.logger.Debug("not listening, dropping input", "bytes", len(data))
		return nil
	}

	text, isText := SplitPayload(data)
	if isText {
		a.logger.Info("received utterance", "text", text)
	} else {
		a.logger.Info("received audio", "bytes", len(data))

		text, err = a.stt.Transcribe(ctx, data)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}
		text = CleanTranscript(text)

		a.logger.Info("transcribed", "text", text)
	}

	res := a.Handle(context.WithoutCancel(ctx), text)
	if !res.Matched {
		a.logger.Info("no command for utterance", "text", res.Utterance)
	}
	return nil
}

// Handle dispatches one utterance against the current page.
func (a *Assistant) Handle(ctx context.Context, utterance string) voice.Result {
	return a.dispatcher.Dispatch(ctx, utterance, a.session.Context())
}

// CleanTranscript strips the sentence punctuation speech-to-text engines add
// around words ("Navigate to stocks." -> "Navigate to stocks").
func CleanTranscript(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = strings.TrimFunc(w, func(r rune) bool {
			return unicode.IsPunct(r) && r != '-' && r != '\''
		})
	}
	return strings.Join(strings.Fields(strings.Join(words, " ")), " ")
}
