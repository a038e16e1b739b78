package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Capture error taxonomy.
var (
	// ErrPermission means the user denied microphone access.
	ErrPermission = errors.New("microphone access denied")
	// ErrNoDevice means no capture device is available.
	ErrNoDevice = errors.New("no capture device available")
	// ErrSlotBusy means a different recording slot is already active.
	ErrSlotBusy = errors.New("another recording is in progress")
)

// Slot identifies which of the two recording controls is being driven.
// The slots are independent but cannot be active simultaneously.
type Slot string

const (
	// SlotBusiness drives the business-information take.
	SlotBusiness Slot = "business"
	// SlotProducts drives the product-information take.
	SlotProducts Slot = "products"
)

// Recorder buffers microphone audio for one take at a time and finalizes
// it into an in-memory MP3 blob. The public surface is a single Toggle
// keyed by slot: start if idle, stop-and-finalize if that slot is active.
type Recorder struct {
	conf *DeviceConfig

	// newDevice is swapped out in tests.
	newDevice func(*DeviceConfig) Device

	mu       sync.Mutex
	active   Slot
	dev      Device
	dataC    chan DataPacket
	segments [][]byte
	buffered atomic.Int64
	wg       sync.WaitGroup
}

// NewRecorder creates a recorder with the given capture configuration.
// A nil config uses the intake defaults.
func NewRecorder(conf *DeviceConfig) *Recorder {
	if conf == nil {
		conf = DefaultDeviceConfig()
	}

	return &Recorder{
		conf:      conf,
		newDevice: NewDevice,
	}
}

// Toggle starts capture for the slot when the recorder is idle, and stops
// and finalizes the take when that slot is active. The returned blob is
// nil when capture just started. Toggling a slot while the other one is
// active fails with ErrSlotBusy.
func (r *Recorder) Toggle(ctx context.Context, slot Slot) (*Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.active {
	case "":
		return nil, r.startLocked(ctx, slot)
	case slot:
		return r.stopLocked(ctx)
	default:
		return nil, fmt.Errorf("%w: slot %s is recording", ErrSlotBusy, r.active)
	}
}

// Stop finalizes the active take, whichever slot owns it.
// A no-op returning (nil, nil) when nothing is recording.
func (r *Recorder) Stop(ctx context.Context) (*Blob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == "" {
		return nil, nil
	}

	return r.stopLocked(ctx)
}

// Active returns the slot currently recording, or "" when idle.
func (r *Recorder) Active() Slot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.active
}

// IsRecording reports whether any slot is currently capturing.
func (r *Recorder) IsRecording() bool {
	return r.Active() != ""
}

// BytesBuffered returns the raw PCM byte count buffered for the active
// take. Safe to call from the render loop while recording.
func (r *Recorder) BytesBuffered() int64 {
	return r.buffered.Load()
}

func (r *Recorder) startLocked(ctx context.Context, slot Slot) error {
	dataC := make(chan DataPacket, 64)

	dev := r.newDevice(r.conf)
	if err := dev.CaptureInto(ctx, dataC); err != nil {
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	// start the device. this will not block as the underlying device
	// handles os-level threading.
	if err := dev.Start(ctx); err != nil {
		dev.Dealloc(ctx)
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	r.active = slot
	r.dev = dev
	r.dataC = dataC
	r.segments = nil
	r.buffered.Store(0)

	// Buffer packets in arrival order until the channel closes on stop.
	r.wg.Go(func() {
		for packet := range dataC {
			r.mu.Lock()
			r.segments = append(r.segments, packet)
			r.mu.Unlock()
			r.buffered.Add(int64(len(packet)))
		}
	})

	slog.Debug("recording started", "slot", slot)

	return nil
}

func (r *Recorder) stopLocked(ctx context.Context) (*Blob, error) {
	slot := r.active

	// Stop blocks until the device has delivered all pending data, so the
	// channel can be closed here without racing the capture callback.
	if err := r.dev.Stop(ctx); err != nil {
		return nil, fmt.Errorf("unable to stop audio device, unable to flush: %w", err)
	}

	close(r.dataC)

	// The drain goroutine takes r.mu per packet; release it while waiting.
	r.mu.Unlock()
	r.wg.Wait()
	r.mu.Lock()

	r.dev.Dealloc(ctx)
	r.dev = nil
	r.dataC = nil
	r.active = ""

	pcm := make([]byte, 0, r.buffered.Load())
	for _, segment := range r.segments {
		pcm = append(pcm, segment...)
	}

	r.segments = nil
	r.buffered.Store(0)

	blob, err := encodeMP3(pcm, r.conf.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize take for slot %s: %w", slot, err)
	}

	slog.Debug("recording finalized", "slot", slot, "pcmBytes", len(pcm), "mp3Bytes", len(blob.Data))

	return blob, nil
}
