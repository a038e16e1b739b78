package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	mp3encoder "github.com/braheezy/shine-mp3/pkg/mp3"
)

// BlobMIME is the fixed MIME type every finalized recording is tagged with.
const BlobMIME = "audio/mpeg"

// Blob is a finalized recording: the concatenation of the buffered PCM
// segments of a take, encoded to MP3 and tagged with a fixed MIME type.
type Blob struct {
	Data []byte
	MIME string
}

// encodeMP3 converts buffered S16LE mono PCM into an in-memory MP3 blob.
func encodeMP3(pcm []byte, sampleRate int) (*Blob, error) {
	if len(pcm) == 0 {
		return nil, errors.New("no audio captured")
	}

	// Convert buffer bytes to []int16 (S16LE PCM).
	numSamples := len(pcm) / 2 // 2 bytes per int16 sample
	monoSamples := make([]int16, numSamples)

	if err := binary.Read(bytes.NewReader(pcm[:numSamples*2]), binary.LittleEndian, monoSamples); err != nil {
		return nil, fmt.Errorf("failed to read PCM samples: %w", err)
	}

	// WORKAROUND: shine-mp3 Write() has a bug for mono (always increments
	// by samples_per_pass * 2). Duplicate samples into stereo (L=R).
	stereoSamples := make([]int16, numSamples*2)
	for i, sample := range monoSamples {
		stereoSamples[i*2] = sample
		stereoSamples[i*2+1] = sample
	}

	var out bytes.Buffer
	encoder := mp3encoder.NewEncoder(sampleRate, 2)
	if err := encoder.Write(&out, stereoSamples); err != nil {
		return nil, fmt.Errorf("failed to encode audio to MP3: %w", err)
	}

	return &Blob{Data: out.Bytes(), MIME: BlobMIME}, nil
}
