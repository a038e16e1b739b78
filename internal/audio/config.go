package audio

import (
	"github.com/gen2brain/malgo"
)

const (
	// DefaultSampleRate is 16kHz, the native sample rate for Whisper.
	DefaultSampleRate = 16_000
	// DefaultChannels is mono (1 channel), Whisper's native audio.
	DefaultChannels = 1
)

// DeviceConfig configures a capture device.
type DeviceConfig struct {
	Format          malgo.FormatType
	CaptureChannels int
	SampleRate      int
}

// DefaultDeviceConfig returns the capture configuration used for intake
// recordings: 16-bit mono PCM at the Whisper sample rate.
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		Format:          malgo.FormatS16,
		CaptureChannels: DefaultChannels,
		SampleRate:      DefaultSampleRate,
	}
}
