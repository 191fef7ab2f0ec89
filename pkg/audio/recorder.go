package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
)

// Recorder captures live audio from a device. Only one session may be
// active at a time.
type Recorder struct {
	dev        Device
	sampleRate int
	channels   int
	chunkSize  int
	max        time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	active bool
}

// NewRecorder builds a recorder from the audio configuration.
func NewRecorder(dev Device, cfg config.Audio, logger *slog.Logger) *Recorder {
	return &Recorder{
		dev:        dev,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		chunkSize:  cfg.ChunkSize,
		max:        cfg.MaxDurationTime(),
		logger:     logger,
	}
}

// Start opens the device and begins sampling. It fails with
// core.ErrSessionActive while another session is running.
func (r *Recorder) Start(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return nil, core.ErrSessionActive
	}

	stream, err := r.dev.Open(ctx, r.sampleRate, r.channels)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture device: %w", err)
	}

	r.active = true
	s := &Session{
		recorder: r,
		stream:   stream,
		done:     make(chan struct{}),
	}

	if r.logger != nil {
		r.logger.Debug("capture session started", "sample_rate", r.sampleRate, "channels", r.channels, "max", r.max)
	}

	lifecycle.Go(ctx, s.run, lifecycle.WithErrorHandler(func(err error) {
		if r.logger != nil {
			r.logger.Error("capture session panic", "error", err)
		}
	}))

	return s, nil
}

func (r *Recorder) release() {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
}

// Session is one live capture run. The reader goroutine accumulates
// samples until Stop, Cancel, context cancellation, or the max-duration
// ceiling.
type Session struct {
	recorder *Recorder
	stream   io.ReadCloser
	done     chan struct{}

	closeOnce sync.Once

	mu        sync.Mutex
	samples   []int16
	truncated bool
	cancelled bool
	err       error
}

// Done is closed when sampling has ended, whether by Stop, Cancel, or the
// ceiling. Callers waiting on a stop command should also select on it.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) run(ctx context.Context) error {
	defer close(s.done)
	defer s.recorder.release()

	maxSamples := int(s.recorder.max.Seconds()) * s.recorder.sampleRate * s.recorder.channels
	chunk := make([]byte, s.recorder.chunkSize*2)

	// Reads carry no alignment guarantee; a trailing odd byte is held back
	// and prepended to the next chunk so sample pairs stay intact.
	var carry []byte

	for {
		if ctx.Err() != nil {
			s.mu.Lock()
			s.cancelled = true
			s.mu.Unlock()
			return nil
		}

		n, err := s.stream.Read(chunk)
		if n > 0 {
			data := chunk[:n]
			if len(carry) > 0 {
				data = append(carry, data...)
			}
			if len(data)%2 == 1 {
				carry = []byte{data[len(data)-1]}
				data = data[:len(data)-1]
			} else {
				carry = nil
			}

			s.mu.Lock()
			s.samples = append(s.samples, bytesToSamples(data)...)
			if len(s.samples) >= maxSamples {
				s.samples = s.samples[:maxSamples]
				s.truncated = true
				s.mu.Unlock()
				s.closeStream()
				if s.recorder.logger != nil {
					s.recorder.logger.Warn("max duration reached, stopping capture", "max", s.recorder.max)
				}
				return nil
			}
			s.mu.Unlock()
		}
		if err != nil {
			// EOF and closed-pipe errors are the normal stop path.
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) &&
				!errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, os.ErrClosed) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return nil
		}
	}
}

func (s *Session) closeStream() {
	s.closeOnce.Do(func() {
		_ = s.stream.Close()
	})
}

// Stop ends the session and returns the captured clip.
func (s *Session) Stop() (core.Clip, error) {
	s.closeStream()
	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled {
		return core.Clip{}, context.Canceled
	}
	if s.err != nil {
		return core.Clip{}, fmt.Errorf("capture failed: %w", s.err)
	}

	return core.Clip{
		Samples:    s.samples,
		SampleRate: s.recorder.sampleRate,
		Channels:   s.recorder.channels,
		Source:     core.SourceMicrophone,
		Truncated:  s.truncated,
	}, nil
}

// Cancel aborts the session and discards the partial buffer.
func (s *Session) Cancel() {
	s.closeStream()
	<-s.done

	s.mu.Lock()
	s.cancelled = true
	s.samples = nil
	s.mu.Unlock()
}
