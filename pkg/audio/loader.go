package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aretw0/murmur/pkg/core"
)

// LoadFile decodes an audio file into a clip. WAV files are decoded
// natively; mp3 and m4a are decoded through ffmpeg. Any other extension
// yields core.ErrUnsupportedFormat.
func LoadFile(ctx context.Context, path string, sampleRate, channels int) (core.Clip, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		clip core.Clip
		err  error
	)
	switch ext {
	case ".wav":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return core.Clip{}, fmt.Errorf("failed to read audio file: %w", err)
		}
		clip, err = DecodeWAV(data)
	case ".mp3", ".m4a":
		clip, err = decodeWithFFmpeg(ctx, path, sampleRate, channels)
	default:
		return core.Clip{}, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return core.Clip{}, err
	}

	clip.Source = core.SourceFile
	clip.Path = path
	return clip, nil
}

// decodeWithFFmpeg shells out to ffmpeg to produce raw signed 16-bit PCM.
// ffmpeg -i input -f s16le -acodec pcm_s16le -ac N -ar R -
func decodeWithFFmpeg(ctx context.Context, path string, sampleRate, channels int) (core.Clip, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-",
	)

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return core.Clip{}, fmt.Errorf("%w: ffmpeg: %s", core.ErrCorruptAudio, strings.TrimSpace(string(ee.Stderr)))
		}
		return core.Clip{}, fmt.Errorf("failed to run ffmpeg: %w", err)
	}
	if len(out) < 2 {
		return core.Clip{}, fmt.Errorf("%w: decoder produced no samples", core.ErrCorruptAudio)
	}

	return core.Clip{
		Samples:    bytesToSamples(out),
		SampleRate: sampleRate,
		Channels:   channels,
	}, nil
}
