package audio

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
)

// Device is a source of raw signed 16-bit little-endian PCM frames.
// Implementations stream until the returned reader is closed.
type Device interface {
	// Open starts capture and returns the PCM stream.
	Open(ctx context.Context, sampleRate, channels int) (io.ReadCloser, error)
}

// FFmpegDevice captures the default microphone by shelling out to ffmpeg.
type FFmpegDevice struct {
	// Input overrides the capture device (e.g. "hw:0" or ":0").
	Input string
}

func (d *FFmpegDevice) Open(ctx context.Context, sampleRate, channels int) (io.ReadCloser, error) {
	format, input := defaultCaptureInput()
	if d.Input != "" {
		input = d.Input
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-f", format,
		"-i", input,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start capture: %w", err)
	}

	return &captureStream{reader: stdout, cmd: cmd}, nil
}

func defaultCaptureInput() (format, input string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "alsa", "default"
	}
}

type captureStream struct {
	reader io.ReadCloser
	cmd    *exec.Cmd
}

func (s *captureStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *captureStream) Close() error {
	s.reader.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return s.cmd.Wait()
}
