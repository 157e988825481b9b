package application

import (
	"context"
	"fmt"
)

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// NoopSTT is used when only text sources are configured.
type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	return "", fmt.Errorf("speech-to-text not configured: set openai.api_key to enable audio transcription")
}
