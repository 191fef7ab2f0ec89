package core

import (
	"errors"
	"fmt"
)

// Common errors surfaced by pipeline components.
var (
	// ErrUnsupportedFormat is returned for audio files whose extension is not
	// one of .wav, .mp3, .m4a.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrCorruptAudio is returned when a decoder cannot produce a valid
	// sample sequence from a file.
	ErrCorruptAudio = errors.New("corrupt audio data")

	// ErrSessionActive is returned when a second live capture session (or
	// pipeline run) is started while one is already active.
	ErrSessionActive = errors.New("session already active")

	// ErrBackendUnavailable is returned when the speech-to-text backend
	// cannot be reached. It is retryable.
	ErrBackendUnavailable = errors.New("transcription backend unavailable")

	// ErrEmptyAudio is returned for clips with no effective speech content.
	// It is not retryable.
	ErrEmptyAudio = errors.New("audio is empty or silent")

	// ErrTemplateField is returned when a note template references a
	// placeholder outside the known vocabulary.
	ErrTemplateField = errors.New("unknown template field")

	// ErrNoteExists is returned when the deterministic note path already
	// exists and overwrite was not requested.
	ErrNoteExists = errors.New("note already exists")
)

// Stage identifies the pipeline stage an error originated from.
type Stage string

const (
	StageRecording    Stage = "recording"
	StageLoading      Stage = "loading"
	StageTranscribing Stage = "transcribing"
	StageEnhancing    Stage = "enhancing"
	StageAssembling   Stage = "assembling"
	StagePersisting   Stage = "persisting"
)

// PipelineError tags a component error with the stage it aborted.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed during %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// CleanupError collects per-file failures from a cleanup sweep. It is
// reported as a summary and never aborts the batch.
type CleanupError struct {
	Failures map[string]error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleanup skipped %d file(s)", len(e.Failures))
}
