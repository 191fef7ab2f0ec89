// Package transcribe converts audio clips to text through pluggable
// speech-to-text backends.
package transcribe

import (
	"context"

	"github.com/aretw0/murmur/pkg/core"
)

// Request carries one clip plus decoding hints to a backend.
type Request struct {
	Clip          core.Clip
	Language      string
	Temperature   float64 // 0.0 selects the backend's most deterministic path
	InitialPrompt string
}

// Segment is one portion of transcribed audio.
type Segment struct {
	Start float64 // seconds
	End   float64
	Text  string
	// Confidence is in [0,1]. Negative means the backend reported none.
	Confidence float64
}

// Result is the raw backend output before pipeline-level gating.
type Result struct {
	Text     string
	Language string
	Segments []Segment
}

// MeanConfidence averages the segment confidences, or returns -1 when the
// backend reported none.
func (r Result) MeanConfidence() float64 {
	var sum float64
	var n int
	for _, s := range r.Segments {
		if s.Confidence >= 0 {
			sum += s.Confidence
			n++
		}
	}
	if n == 0 {
		return -1
	}
	return sum / float64(n)
}

// Backend is a pluggable speech-to-text provider. Anything that turns
// audio bytes into text plus confidence is substitutable.
type Backend interface {
	Name() string
	Transcribe(ctx context.Context, req Request) (Result, error)
}
