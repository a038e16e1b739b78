package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bizvoice/intake/internal/audio"
	"github.com/bizvoice/intake/internal/extraction"
	"github.com/bizvoice/intake/internal/keyring"
	"github.com/bizvoice/intake/internal/persist"
	"github.com/bizvoice/intake/internal/tui"
	"github.com/bizvoice/intake/internal/tui/workflow"
)

// CLI defines the intake command structure.
type CLI struct {
	// Default TUI command (runs when no subcommand given)
	TUI TUICmd `cmd:"" default:"withargs" help:"Launch terminal UI for the intake workflow"`

	// Subcommands
	Devices DevicesCmd `cmd:"" help:"List available audio devices"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

// TUICmd is the default command that runs the TUI.
type TUICmd struct {
	ServerURL string `flag:"" default:"http://localhost:8080" env:"INTAKE_SERVER_URL" help:"Backend server URL"`
	MaxBytes  int64  `flag:"" default:"26214400" help:"Max recording size (25MB, the transcription upload limit)"`
}

// Run executes the TUI command.
func (c *TUICmd) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := audio.NewRecorder(nil)

	config := tui.Config{
		Cancel:    cancel,
		ServerURL: c.ServerURL,
	}

	ctrls := workflow.RecordingControls{
		Active:   micKnob{recorder: recorder},
		Buffered: bufferDial{recorder: recorder, maxBytes: c.MaxBytes},
	}

	p := tea.NewProgram(tui.New(
		ctx,
		config,
		recorder,
		extraction.NewClient(c.ServerURL),
		persist.NewClient(c.ServerURL),
		ctrls,
	))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	fmt.Println("\nfinished. bye!")

	return nil
}

// DevicesCmd lists available audio devices.
type DevicesCmd struct{}

// Run executes the devices command.
func (dcmd *DevicesCmd) Run() error {
	slog.Info("Enumerating audio devices...")

	adev := audio.NewDevice(nil)
	devices, err := adev.EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// ConfigCmd groups configuration-related subcommands.
type ConfigCmd struct {
	SetKey   SetKeyCmd   `cmd:"" help:"Store an API key in system keychain"`
	ListKeys ListKeysCmd `cmd:"" name:"list-keys" help:"Show which API keys are configured"`
}

// SetKeyCmd stores an API key in the system keychain.
type SetKeyCmd struct {
	Service string `arg:"" enum:"openai,anthropic" help:"Service name (openai or anthropic)"`
	Secret  string `arg:"" help:"API key value"`
}

// Run executes the set-key command.
func (c *SetKeyCmd) Run() error {
	if strings.TrimSpace(c.Secret) == "" {
		return errors.New("API key cannot be empty")
	}

	apiKey, err := keyring.APIKeyFromServiceName(c.Service)
	if err != nil {
		return fmt.Errorf("invalid service: %w", err)
	}

	if err := keyring.Set(apiKey, c.Secret); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	fmt.Printf("%s API key stored in keychain\n", c.Service)

	return nil
}

// ListKeysCmd shows which API keys are configured.
type ListKeysCmd struct{}

// Run executes the list-keys command.
//
//nolint:unparam // error return required by Kong interface
func (c *ListKeysCmd) Run() error {
	allSet := true

	for _, apiKey := range keyring.AllAPIKeys() {
		if keyring.IsSet(apiKey) {
			fmt.Printf("%s: configured\n", apiKey.DisplayName())
		} else {
			fmt.Printf("%s: not set\n", apiKey.DisplayName())
			allSet = false
		}
	}

	if !allSet {
		fmt.Println("\nRun 'intake config set-key <service> <key>' to configure the server keys.")
	}

	return nil
}

func main() {
	// Set up text-based logger for CLI output
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
	os.Exit(0)
}

// micKnob exposes the recorder's mic state to the TUI.
type micKnob struct {
	recorder *audio.Recorder
}

func (mk micKnob) Read() bool {
	return mk.recorder.IsRecording()
}

// On, Off and Toggle are no-ops: the workflow drives the recorder through
// its Toggle call so takes always finalize into a blob.
func (mk micKnob) On() {}

func (mk micKnob) Off() {}

func (mk micKnob) Toggle() {}

// bufferDial reports buffered take bytes against the upload limit.
type bufferDial struct {
	recorder *audio.Recorder
	maxBytes int64
}

func (bd bufferDial) Read() int64 {
	return bd.recorder.BytesBuffered()
}

func (bd bufferDial) Cap() (int64, int64) {
	return bd.Read(), bd.maxBytes
}
