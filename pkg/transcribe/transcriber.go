package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
)

const (
	// silenceFloor is the confidence below which an empty transcript is
	// treated as silence rather than a valid (blank) result.
	silenceFloor = 0.3

	// silenceAmplitude is the peak sample magnitude under which a clip is
	// considered silent without consulting the backend (~0.3% full scale).
	silenceAmplitude = 100

	defaultMaxRetries = 3
)

// Transcriber wraps a backend with retry and silence gating.
type Transcriber struct {
	backend    Backend
	language   string
	temp       float64
	prompt     string
	maxRetries uint64
	logger     *slog.Logger
}

// New builds a transcriber from the transcription configuration. A zero
// MaxRetries keeps the default bound.
func New(backend Backend, cfg config.Transcription, logger *slog.Logger) *Transcriber {
	maxRetries := uint64(defaultMaxRetries)
	if cfg.MaxRetries > 0 {
		maxRetries = uint64(cfg.MaxRetries)
	}
	return &Transcriber{
		backend:    backend,
		language:   cfg.Language,
		temp:       cfg.Temperature,
		prompt:     cfg.InitialPrompt,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Transcribe runs the backend over a clip. Backend-unavailable failures
// are retried with exponential backoff up to a bounded count; empty or
// silent audio fails immediately with core.ErrEmptyAudio.
func (t *Transcriber) Transcribe(ctx context.Context, clip core.Clip) (core.Transcription, error) {
	if clip.Duration() <= 0 {
		return core.Transcription{}, fmt.Errorf("%w: zero duration clip", core.ErrEmptyAudio)
	}
	if silent(clip.Samples) {
		return core.Transcription{}, fmt.Errorf("%w: no signal above noise floor", core.ErrEmptyAudio)
	}

	req := Request{
		Clip:          clip,
		Language:      t.language,
		Temperature:   t.temp,
		InitialPrompt: t.prompt,
	}

	var res Result
	operation := func() error {
		var err error
		res, err = t.backend.Transcribe(ctx, req)
		if err == nil {
			return nil
		}
		if errors.Is(err, core.ErrBackendUnavailable) {
			if t.logger != nil {
				t.logger.Warn("transcription backend unavailable, retrying", "backend", t.backend.Name(), "error", err)
			}
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), t.maxRetries)); err != nil {
		return core.Transcription{}, err
	}

	text := strings.TrimSpace(res.Text)
	conf := res.MeanConfidence()
	if text == "" && conf < silenceFloor {
		return core.Transcription{}, fmt.Errorf("%w: backend returned no speech", core.ErrEmptyAudio)
	}

	lang := res.Language
	if lang == "" {
		lang = t.language
	}

	return core.Transcription{
		Text:           text,
		Language:       lang,
		MeanConfidence: conf,
		Backend:        t.backend.Name(),
	}, nil
}

func silent(samples []int16) bool {
	for _, s := range samples {
		if s > silenceAmplitude || s < -silenceAmplitude {
			return false
		}
	}
	return true
}
