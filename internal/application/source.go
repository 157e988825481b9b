package application

import (
	"context"

	"voicenav/internal/domain"
)

// UtteranceSource delivers recognized speech one payload at a time. Text
// payloads carry domain.TextCommandPrefix; anything else is audio.
type UtteranceSource interface {
	Start(ctx context.Context) error
	Stop() error
	Next(ctx context.Context) ([]byte, error)
	Name() string
}

// TextPayload wraps an utterance for transport through an UtteranceSource.
func TextPayload(text string) []byte {
	return []byte(domain.TextCommandPrefix + text)
}

// SplitPayload returns the utterance of a text payload.
func SplitPayload(data []byte) (string, bool) {
	prefix := domain.TextCommandPrefix
	if len(data) > len(prefix) && string(data[:len(prefix)]) == prefix {
		return string(data[len(prefix):]), true
	}
	return "", false
}

type AudioFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

func DefaultAudioFormat() AudioFormat {
	return AudioFormat{
		SampleRate: 16000,
		Channels:   1,
		BitDepth:   16,
	}
}
