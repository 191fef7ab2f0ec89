// Package core holds the domain types shared by every pipeline stage.
package core

import "time"

// SourceKind identifies where a clip came from.
type SourceKind string

const (
	SourceMicrophone SourceKind = "microphone"
	SourceFile       SourceKind = "file"
)

// Clip is a bounded buffer of captured audio.
// It is immutable once produced by an audio source.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
	Source     SourceKind
	Path       string // original file path, empty for live capture
	Truncated  bool   // capture hit the max-duration ceiling
}

// Duration returns the playing time of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.Samples) / c.Channels
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Transcription is the output of a speech-to-text backend for one clip.
type Transcription struct {
	Text     string
	Language string
	// MeanConfidence is in [0,1]. Negative means the backend reported none.
	MeanConfidence float64
	Backend        string
}

// HasConfidence reports whether the backend provided a confidence score.
func (t Transcription) HasConfidence() bool {
	return t.MeanConfidence >= 0
}

// Mood is a closed set of diary moods. Detection falls back to MoodUnknown
// when no signal clears the confidence floor.
type Mood string

const (
	MoodHappy    Mood = "happy"
	MoodSad      Mood = "sad"
	MoodExcited  Mood = "excited"
	MoodAnxious  Mood = "anxious"
	MoodCalm     Mood = "calm"
	MoodAngry    Mood = "angry"
	MoodGrateful Mood = "grateful"
	MoodUnknown  Mood = "unknown"
)

// Enhancement accumulates the output of the enhancement pass chain.
// Each pass owns a disjoint set of fields.
type Enhancement struct {
	Text           string
	Mood           Mood
	Topics         []string
	WordCount      int
	RemovedFillers int
}

// NoteMeta is the derived metadata rendered into a note's header.
type NoteMeta struct {
	CreatedAt time.Time
	Duration  time.Duration
	Mood      Mood
	Topics    []string
	WordCount int
	Weather   string
	Location  string
	// Related holds note IDs, most recent first, bounded to the lookback window.
	Related []string
}

// Note is the final assembled diary document. Its identity is the persisted
// file path, derived deterministically from CreatedAt.
type Note struct {
	Meta NoteMeta
	Body string
	// AudioLink references the persisted audio artifact, empty if none kept.
	AudioLink string
}

// RetentionPolicy governs the store's cleanup of audio artifacts.
type RetentionPolicy struct {
	DeleteAfterProcessing bool
	RetentionDays         int
}
