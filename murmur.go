// Package murmur turns spoken recordings into structured diary notes in
// an Obsidian vault.
package murmur

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
	"github.com/aretw0/murmur/pkg/enhance"
	"github.com/aretw0/murmur/pkg/pipeline"
	"github.com/aretw0/murmur/pkg/transcribe"
	"github.com/aretw0/murmur/pkg/vault"
)

// Version exposes the library version.
const Version = "0.3.0"

// options holds the internal wiring configuration.
type options struct {
	logger  *slog.Logger
	backend transcribe.Backend
	device  audio.Device
	clock   func() time.Time
}

// Option is a functional option for wiring the pipeline.
type Option func(*options)

// WithLogger sets the logger used across components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBackend injects a custom speech-to-text backend (e.g. a mock).
func WithBackend(b transcribe.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithDevice injects a custom capture device.
func WithDevice(d audio.Device) Option {
	return func(o *options) { o.device = d }
}

// WithClock overrides the time source (useful for testing deterministic
// note paths).
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// New wires every component from the configuration and returns the
// pipeline runner.
func New(cfg config.Config, opts ...Option) (*pipeline.Runner, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	backend := o.backend
	if backend == nil {
		var err error
		backend, err = defaultBackend(cfg.Transcription)
		if err != nil {
			return nil, err
		}
	}

	device := o.device
	if device == nil {
		device = &audio.FFmpegDevice{}
	}

	store := vault.NewStore(cfg.Obsidian, o.logger)
	if err := store.Initialize(); err != nil {
		return nil, err
	}

	template, err := vault.LoadTemplate(cfg.Obsidian.TemplatePath)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(pipeline.Options{
		Recorder:    audio.NewRecorder(device, cfg.Audio, o.logger),
		Transcriber: transcribe.New(backend, cfg.Transcription, o.logger),
		Chain:       enhance.NewChain(cfg.Enhancement, o.logger),
		Assembler:   vault.NewAssembler(template, store),
		Store:       store,
		Policy: core.RetentionPolicy{
			DeleteAfterProcessing: cfg.Privacy.DeleteAfterProcessing,
			RetentionDays:         cfg.Privacy.RetentionDays,
		},
		MaxDuration: cfg.Audio.MaxDurationTime(),
		Logger:      o.logger,
		Clock:       o.clock,
	}), nil
}

func defaultBackend(cfg config.Transcription) (transcribe.Backend, error) {
	switch cfg.Backend {
	case "openai", "":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return transcribe.NewOpenAIBackend(key, cfg.Model), nil
	case "server":
		url := os.Getenv("WHISPER_SERVER_URL")
		if url == "" {
			return nil, fmt.Errorf("WHISPER_SERVER_URL is not set")
		}
		return transcribe.NewServerBackend(url, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend %q (supported: openai, server)", cfg.Backend)
	}
}
