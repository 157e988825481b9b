//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"

	"voicenav/internal/application"
)

const (
	framesPerBuffer  = 1024
	silenceThreshold = int16(500)
	maxUtteranceSecs = 10
)

// MicrophoneSource records one utterance at a time from the default input
// device. An utterance starts with the first loud frame and ends after a
// second of silence.
type MicrophoneSource struct {
	sampleRate int
	logger     *slog.Logger

	mu     sync.Mutex
	stream *portaudio.Stream
	frames []int16
}

func NewMicrophoneSource(sampleRate int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate: sampleRate,
		logger:     logger,
		frames:     make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, m.frames)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.stream = stream
	m.logger.Info("microphone started", "sampleRate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream == nil {
		return nil
	}
	m.stream.Stop()
	m.stream.Close()
	m.stream = nil
	return portaudio.Terminate()
}

func (m *MicrophoneSource) Next(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	stream := m.stream
	m.mu.Unlock()

	if stream == nil {
		return nil, fmt.Errorf("microphone not started")
	}

	samples := make([]int16, 0, m.sampleRate*maxUtteranceSecs)
	heard := false
	silent := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		loud := false
		for _, s := range m.frames {
			if s > silenceThreshold || s < -silenceThreshold {
				loud = true
				break
			}
		}

		if !heard {
			if !loud {
				continue
			}
			heard = true
		}

		samples = append(samples, m.frames...)
		if loud {
			silent = 0
		} else {
			silent += len(m.frames)
		}

		if silent > m.sampleRate || len(samples) >= m.sampleRate*maxUtteranceSecs {
			break
		}
	}

	m.logger.Debug("utterance recorded", "samples", len(samples))
	format := application.DefaultAudioFormat()
	format.SampleRate = m.sampleRate
	return encodeWAV(samples, format)
}
