package audio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bizvoice/intake/pkg/channels"
	"github.com/bizvoice/intake/pkg/collections"
	"github.com/gen2brain/malgo"
)

// Device wraps a malgo capture device.
type Device interface {
	// EnumerateDevices lists available capture devices.
	// It ignores any device configuration passed in.
	EnumerateDevices(ctx context.Context) ([]Info, error)

	// CaptureInto initializes the underlying device so that, once Start()
	// is called, packets of sampled bytes are written into dataC in
	// arrival order. Packets that would block the OS audio thread are
	// dropped rather than queued.
	CaptureInto(ctx context.Context, dataC chan DataPacket) error

	// Start starts the audio device.
	Start(ctx context.Context) error
	// Stop stops the audio device. Blocks until pending data has been
	// delivered. Stop while stopped is a no-op.
	Stop(ctx context.Context) error

	// IsStarted returns whether the audio device is currently started.
	IsStarted() bool

	// Dealloc deallocates the underlying audio device and frees resources.
	Dealloc(ctx context.Context)
}

type device struct {
	conf *DeviceConfig

	mgCtx    *malgo.AllocatedContext
	mgDevice *malgo.Device
}

// NewDevice creates a capture device with the given configuration.
func NewDevice(conf *DeviceConfig) Device {
	return &device{conf: conf}
}

func (d *device) EnumerateDevices(ctx context.Context) ([]Info, error) {
	// An empty context is fine for just enumerating devices.
	devCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer uninitializeContext(devCtx)

	captureDevices, err := devCtx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get capture devices: %w", err)
	}

	return collections.Apply(captureDevices, malgoDeviceInfoToDeviceInfo), nil
}

func (d *device) CaptureInto(ctx context.Context, dataC chan DataPacket) error {
	if dataC == nil {
		return fmt.Errorf("data channel is nil. unable to allocate device")
	}

	mgCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return classifyInitError(fmt.Errorf("failed to initialize malgo context: %w", err))
	}

	devCnf := malgo.DefaultDeviceConfig(malgo.Capture)
	devCnf.Capture.Format = d.conf.Format
	devCnf.Capture.Channels = uint32(d.conf.CaptureChannels)
	devCnf.SampleRate = uint32(d.conf.SampleRate)

	callBacks := malgo.DeviceCallbacks{
		Data: func(_, samples []byte, framecount uint32) {
			// The callback runs on the OS audio thread; copy the sample
			// window (malgo reuses it) and never block here.
			packet := make(DataPacket, len(samples))
			copy(packet, samples)
			if err := channels.SendNonBlock(dataC, packet); err != nil {
				slog.Warn("dropping audio packet", "bytes", len(packet), "error", err)
			}
		},
	}

	mgDevice, err := malgo.InitDevice(mgCtx.Context, devCnf, callBacks)
	if err != nil {
		uninitializeContext(mgCtx)
		return classifyInitError(fmt.Errorf("failed to initialize malgo device: %w", err))
	}

	d.mgCtx = mgCtx
	d.mgDevice = mgDevice

	return nil
}

func (d *device) Start(ctx context.Context) error {
	if d.mgDevice == nil {
		return fmt.Errorf("device nil. have you allocated and CaptureInto()ed it?")
	}

	if d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Start(); err != nil {
		return fmt.Errorf("failed to start malgo device: %w", err)
	}

	return nil
}

func (d *device) Stop(ctx context.Context) error {
	if d.mgDevice == nil {
		// noop
		return nil
	}

	if !d.mgDevice.IsStarted() {
		// noop
		return nil
	}

	if err := d.mgDevice.Stop(); err != nil {
		return fmt.Errorf("failed to stop malgo device: %w", err)
	}

	return nil
}

func (d *device) IsStarted() bool {
	if d.mgDevice == nil {
		return false
	}

	return d.mgDevice.IsStarted()
}

func (d *device) Dealloc(ctx context.Context) {
	if d.mgDevice == nil {
		return
	}

	d.mgDevice.Uninit()
	d.mgCtx.Free()
	d.mgDevice = nil
	d.mgCtx = nil
}

// classifyInitError maps device initialization failures onto the capture
// error taxonomy so callers can show the right affordance.
func classifyInitError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "access") || strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}

	return fmt.Errorf("%w: %v", ErrNoDevice, err)
}

// Info describes one capture device.
type Info struct {
	Name        string
	IsDefault   bool
	FormatCount int
	Formats     []string
}

func malgoDeviceInfoToDeviceInfo(mdi malgo.DeviceInfo) Info {
	formats := make([]string, len(mdi.Formats))
	for i, mf := range mdi.Formats {
		formats[i] = fmt.Sprintf("(SampleSizeBytes: %d, Channels: %d, SampleRate: %d)",
			malgo.SampleSizeInBytes(mf.Format),
			mf.Channels, mf.SampleRate)
	}
	return Info{
		Name:        mdi.Name(),
		IsDefault:   mdi.IsDefault != 0,
		FormatCount: int(mdi.FormatCount),
		Formats:     formats,
	}
}

// DataPacket is one window of raw PCM bytes from the capture callback.
type DataPacket = []byte

func uninitializeContext(deviceCtx *malgo.AllocatedContext) {
	if deviceCtx == nil {
		return
	}

	if err := deviceCtx.Uninit(); err != nil {
		slog.Error("failed to uninitialize malgo context", "error", err)
	}
	deviceCtx.Free()
}
