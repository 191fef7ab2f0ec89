package murmur_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/murmur"
	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
	"github.com/aretw0/murmur/pkg/transcribe"
)

// cannedBackend stands in for a real speech-to-text provider so the
// example runs offline.
type cannedBackend struct{}

func (cannedBackend) Name() string { return "canned" }

func (cannedBackend) Transcribe(context.Context, transcribe.Request) (transcribe.Result, error) {
	return transcribe.Result{Text: "went for a long walk this morning", Language: "en"}, nil
}

// Example_processFile turns a recorded WAV file into a diary note.
func Example_processFile() {
	tmpDir, err := os.MkdirTemp("", "murmur-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := config.Default()
	cfg.Obsidian.VaultPath = filepath.Join(tmpDir, "vault")

	runner, err := murmur.New(cfg,
		murmur.WithBackend(cannedBackend{}),
		murmur.WithClock(func() time.Time {
			return time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	// A short clip with an audible tone; a real one would come from a
	// recorder or a phone upload.
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(2000 * (i%2*2 - 1))
	}
	clipPath := filepath.Join(tmpDir, "morning.wav")
	wav := audio.EncodeWAV(core.Clip{Samples: samples, SampleRate: 16000, Channels: 1})
	if err := os.WriteFile(clipPath, wav, 0o644); err != nil {
		log.Fatal(err)
	}

	notePath, err := runner.ProcessFile(context.Background(), clipPath, cfg.Audio.SampleRate, cfg.Audio.Channels)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(filepath.Base(notePath))
	// Output:
	// 2024-03-13_0900.md
}
