package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/core"
)

// OpenAIBackend transcribes through the OpenAI audio transcriptions API.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates a Whisper-over-API backend.
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	if model == "" {
		model = openai.Whisper1
	}
	return &OpenAIBackend{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string { return "openai/" + b.model }

func (b *OpenAIBackend) Transcribe(ctx context.Context, req Request) (Result, error) {
	wav := audio.EncodeWAV(req.Clip)

	resp, err := b.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       b.model,
		Reader:      bytes.NewReader(wav),
		FilePath:    "clip.wav",
		Language:    req.Language,
		Temperature: float32(req.Temperature),
		Prompt:      req.InitialPrompt,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			if apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429 {
				return Result{}, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
			}
			return Result{}, fmt.Errorf("transcription request rejected: %w", err)
		}
		// Transport-level failure: host down, DNS, timeout.
		return Result{}, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}

	res := Result{
		Text:     resp.Text,
		Language: resp.Language,
	}
	for _, seg := range resp.Segments {
		res.Segments = append(res.Segments, Segment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       seg.Text,
			Confidence: logprobToConfidence(seg.AvgLogprob),
		})
	}
	return res, nil
}

// logprobToConfidence maps a mean token logprob to [0,1].
func logprobToConfidence(avgLogprob float64) float64 {
	c := math.Exp(avgLogprob)
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return c
}
