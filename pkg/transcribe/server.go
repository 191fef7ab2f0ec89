package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/core"
)

// ServerBackend talks to a self-hosted whisper server (e.g. faster-whisper
// behind a small HTTP shim) over multipart POST.
type ServerBackend struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewServerBackend creates a backend pointed at baseURL.
func NewServerBackend(baseURL, model string) *ServerBackend {
	return &ServerBackend{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 10 * time.Minute},
	}
}

func (b *ServerBackend) Name() string { return "server/" + b.model }

type serverResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64  `json:"start"`
		End        float64  `json:"end"`
		Text       string   `json:"text"`
		Confidence *float64 `json:"confidence"`
	} `json:"segments"`
}

func (b *ServerBackend) Transcribe(ctx context.Context, req Request) (Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", b.model); err != nil {
		return Result{}, err
	}
	if err := mw.WriteField("language", req.Language); err != nil {
		return Result{}, err
	}
	if err := mw.WriteField("temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64)); err != nil {
		return Result{}, err
	}
	if req.InitialPrompt != "" {
		if err := mw.WriteField("initial_prompt", req.InitialPrompt); err != nil {
			return Result{}, err
		}
	}

	fw, err := mw.CreateFormFile("file", "clip.wav")
	if err != nil {
		return Result{}, err
	}
	if _, err := fw.Write(audio.EncodeWAV(req.Clip)); err != nil {
		return Result{}, err
	}
	if err := mw.Close(); err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/transcribe", &body)
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", core.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		raw, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("%w: server http %d: %s", core.ErrBackendUnavailable, resp.StatusCode, raw)
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("transcription server http %d: %s", resp.StatusCode, raw)
	}

	var parsed serverResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("malformed transcription response: %w", err)
	}

	res := Result{Text: parsed.Text, Language: parsed.Language}
	for _, s := range parsed.Segments {
		conf := -1.0
		if s.Confidence != nil {
			conf = *s.Confidence
		}
		res.Segments = append(res.Segments, Segment{
			Start:      s.Start,
			End:        s.End,
			Text:       s.Text,
			Confidence: conf,
		})
	}
	return res, nil
}
