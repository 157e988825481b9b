package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"voicenav/internal/application"
)

// encodeWAV wraps PCM samples in a RIFF/WAVE container.
func encodeWAV(samples []int16, format application.AudioFormat) ([]byte, error) {
	var buf bytes.Buffer

	blockAlign := format.Channels * format.BitDepth / 8
	dataSize := len(samples) * 2

	header := []any{
		[]byte("RIFF"), int32(36 + dataSize), []byte("WAVE"),
		[]byte("fmt "), int32(16), int16(1), int16(format.Channels),
		int32(format.SampleRate), int32(format.SampleRate * blockAlign),
		int16(blockAlign), int16(format.BitDepth),
		[]byte("data"), int32(dataSize),
	}
	for _, field := range header {
		if err := binary.Write(&buf, binary.LittleEndian, field); err != nil {
			return nil, fmt.Errorf("writing wav header: %w", err)
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("writing wav samples: %w", err)
	}

	return buf.Bytes(), nil
}
