// Package pipeline sequences capture, transcription, enhancement,
// assembly, and persistence for one diary entry at a time.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/core"
	"github.com/aretw0/murmur/pkg/enhance"
	"github.com/aretw0/murmur/pkg/transcribe"
	"github.com/aretw0/murmur/pkg/vault"
)

// State is the orchestrator's explicit finite-state value.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateEnhancing    State = "enhancing"
	StateAssembling   State = "assembling"
	StatePersisting   State = "persisting"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Runner owns the pipeline state machine. A single runner drives at most
// one run at a time; starting a second concurrent run fails with
// core.ErrSessionActive.
type Runner struct {
	recorder    *audio.Recorder
	transcriber *transcribe.Transcriber
	chain       *enhance.Chain
	assembler   *vault.Assembler
	store       *vault.Store
	policy      core.RetentionPolicy
	timeout     time.Duration
	logger      *slog.Logger
	clock       func() time.Time

	// Overwrite allows replacing an existing note at the same path.
	Overwrite bool

	mu      sync.Mutex
	state   State
	failure *core.PipelineError
	session *audio.Session
}

// Options bundles the runner's collaborators.
type Options struct {
	Recorder    *audio.Recorder
	Transcriber *transcribe.Transcriber
	Chain       *enhance.Chain
	Assembler   *vault.Assembler
	Store       *vault.Store
	Policy      core.RetentionPolicy
	MaxDuration time.Duration
	Logger      *slog.Logger
	Clock       func() time.Time
}

// NewRunner builds the orchestrator. The per-run timeout scales with the
// capture ceiling: long recordings get proportionally longer to process.
func NewRunner(opts Options) *Runner {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	timeout := 2 * opts.MaxDuration
	if timeout < time.Minute {
		timeout = time.Minute
	}
	return &Runner{
		recorder:    opts.Recorder,
		transcriber: opts.Transcriber,
		chain:       opts.Chain,
		assembler:   opts.Assembler,
		store:       opts.Store,
		policy:      opts.Policy,
		timeout:     timeout,
		logger:      opts.Logger,
		clock:       clock,
		state:       StateIdle,
	}
}

// State reports the current pipeline state. Done and Failed are safe to
// query repeatedly but are not re-enterable; the next run starts fresh
// from Idle.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Failure returns the error that moved the pipeline to Failed, if any.
func (r *Runner) Failure() *core.PipelineError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failure
}

// begin claims the runner for a new run entering the given state.
func (r *Runner) begin(s State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateIdle && r.state != StateDone && r.state != StateFailed {
		return core.ErrSessionActive
	}
	r.state = s
	r.failure = nil
	return nil
}

func (r *Runner) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

func (r *Runner) fail(stage core.Stage, err error) error {
	perr := &core.PipelineError{Stage: stage, Err: err}
	r.mu.Lock()
	r.state = StateFailed
	r.failure = perr
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Error("pipeline failed", "stage", stage, "error", err)
	}
	return perr
}

// StartRecording moves Idle -> Recording and begins live capture.
func (r *Runner) StartRecording(ctx context.Context) error {
	if err := r.begin(StateRecording); err != nil {
		return err
	}

	session, err := r.recorder.Start(ctx)
	if err != nil {
		r.setState(StateIdle)
		return err
	}

	r.mu.Lock()
	r.session = session
	r.mu.Unlock()
	return nil
}

// RecordingDone is closed when capture ends on its own (max-duration
// ceiling) so callers can stop waiting for a stop command.
func (r *Runner) RecordingDone() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return r.session.Done()
}

// StopRecording ends capture and feeds the clip through the rest of the
// pipeline, returning the persisted note path.
func (r *Runner) StopRecording(ctx context.Context) (string, error) {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session == nil {
		return "", fmt.Errorf("no recording in progress")
	}

	clip, err := session.Stop()
	if err != nil {
		r.setState(StateIdle)
		return "", err
	}
	if clip.Truncated && r.logger != nil {
		r.logger.Warn("recording was truncated at the max-duration ceiling")
	}

	return r.run(ctx, clip)
}

// CancelRecording discards the in-flight capture and returns to Idle.
func (r *Runner) CancelRecording() {
	r.mu.Lock()
	session := r.session
	r.session = nil
	r.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
	r.setState(StateIdle)
}

// ProcessFile loads an audio file and runs the full pipeline on it.
// Re-processing the same file always creates a new note.
func (r *Runner) ProcessFile(ctx context.Context, path string, sampleRate, channels int) (string, error) {
	if err := r.begin(StateTranscribing); err != nil {
		return "", err
	}

	clip, err := audio.LoadFile(ctx, path, sampleRate, channels)
	if err != nil {
		return "", r.fail(core.StageLoading, err)
	}
	return r.run(ctx, clip)
}

// Transcribe runs only the speech-to-text stage for a file.
func (r *Runner) Transcribe(ctx context.Context, path string, sampleRate, channels int) (core.Transcription, error) {
	if err := r.begin(StateTranscribing); err != nil {
		return core.Transcription{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	clip, err := audio.LoadFile(ctx, path, sampleRate, channels)
	if err != nil {
		return core.Transcription{}, r.fail(core.StageLoading, err)
	}
	tr, err := r.transcriber.Transcribe(ctx, clip)
	if err != nil {
		return core.Transcription{}, r.fail(core.StageTranscribing, err)
	}
	r.setState(StateDone)
	return tr, nil
}

// Cleanup runs the store's retention sweep.
func (r *Runner) Cleanup() (int, error) {
	return r.store.Cleanup(r.policy)
}

// run walks the state machine from Transcribing to Done for one clip.
func (r *Runner) run(ctx context.Context, clip core.Clip) (string, error) {
	runID := uuid.NewString()
	createdAt := r.clock()
	log := r.logger
	if log != nil {
		log = log.With("run_id", runID)
		log.Info("processing clip", "source", clip.Source, "duration", clip.Duration())
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Transcribing
	r.setState(StateTranscribing)
	tr, err := r.transcriber.Transcribe(ctx, clip)
	if err != nil {
		if ctx.Err() != nil {
			return "", r.fail(core.StageTranscribing, fmt.Errorf("timeout: %w", ctx.Err()))
		}
		return "", r.fail(core.StageTranscribing, err)
	}
	if log != nil {
		log.Info("transcription complete", "backend", tr.Backend, "chars", len(tr.Text))
	}

	// Enhancing: internal pass failures degrade, never abort.
	r.setState(StateEnhancing)
	enh := r.chain.Run(tr.Text, enhance.Context{CreatedAt: createdAt})

	// Persist the audio artifact first so the note link never dangles.
	var audioLink string
	if !r.policy.DeleteAfterProcessing {
		audioLink, err = r.store.SaveAudio(clip, createdAt)
		if err != nil {
			return "", r.fail(core.StagePersisting, err)
		}
	}

	// Assembling
	r.setState(StateAssembling)
	assembled, err := r.assembler.Assemble(enh, createdAt, clip.Duration(), audioLink)
	if err != nil {
		r.discardArtifact(audioLink)
		return "", r.fail(core.StageAssembling, err)
	}

	// Persisting
	r.setState(StatePersisting)
	notePath, err := r.store.SaveNote(createdAt, assembled.Markdown, r.Overwrite)
	if err != nil {
		r.discardArtifact(audioLink)
		return "", r.fail(core.StagePersisting, err)
	}

	// Immediate deletion takes precedence over the retention sweep: the
	// source recording is removed right after a successful save.
	if r.policy.DeleteAfterProcessing && clip.Source == core.SourceFile && clip.Path != "" {
		if err := os.Remove(clip.Path); err != nil && log != nil {
			log.Warn("failed to delete source audio", "path", clip.Path, "error", err)
		}
	}

	r.setState(StateDone)
	if log != nil {
		log.Info("diary entry created", "path", notePath)
	}
	return notePath, nil
}

// discardArtifact removes a just-saved audio artifact after a downstream
// failure, keeping assembly and persistence all-or-nothing.
func (r *Runner) discardArtifact(ref string) {
	if ref == "" {
		return
	}
	if err := r.store.RemoveArtifact(ref); err != nil && r.logger != nil {
		r.logger.Warn("failed to remove orphaned artifact", "ref", ref, "error", err)
	}
}
