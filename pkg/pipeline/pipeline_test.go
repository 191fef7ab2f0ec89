package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
	"github.com/aretw0/murmur/pkg/enhance"
	"github.com/aretw0/murmur/pkg/transcribe"
	"github.com/aretw0/murmur/pkg/vault"
)

// scriptedBackend returns canned transcripts, one per call.
type scriptedBackend struct {
	texts []string
	calls int
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Transcribe(context.Context, transcribe.Request) (transcribe.Result, error) {
	text := b.texts[b.calls]
	b.calls++
	return transcribe.Result{
		Text:     text,
		Language: "en",
		Segments: []transcribe.Segment{{Start: 0, End: 1, Text: text, Confidence: 0.9}},
	}, nil
}

func loudSamples(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(2000 * (i%2*2 - 1))
	}
	return samples
}

func writeClipFile(t *testing.T, samples []int16) string {
	t.Helper()
	clip := core.Clip{Samples: samples, SampleRate: 16000, Channels: 1}
	path := filepath.Join(t.TempDir(), "entry.wav")
	require.NoError(t, os.WriteFile(path, audio.EncodeWAV(clip), 0o644))
	return path
}

type env struct {
	runner *Runner
	store  *vault.Store
	vault  string
	now    time.Time
}

func newEnv(t *testing.T, backend transcribe.Backend, policy core.RetentionPolicy) *env {
	t.Helper()

	vaultPath := t.TempDir()
	store := vault.NewStore(config.Obsidian{VaultPath: vaultPath, DiaryFolder: "diary"}, nil)
	require.NoError(t, store.Initialize())

	tpl, err := vault.LoadTemplate("")
	require.NoError(t, err)

	e := &env{
		store: store,
		vault: vaultPath,
		now:   time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC),
	}
	e.runner = NewRunner(Options{
		Transcriber: transcribe.New(backend, config.Transcription{Language: "en"}, nil),
		Chain:       enhance.NewChain(config.Default().Enhancement, nil),
		Assembler:   vault.NewAssembler(tpl, store),
		Store:       store,
		Policy:      policy,
		MaxDuration: 5 * time.Minute,
		Clock:       func() time.Time { return e.now },
	})
	return e
}

func (e *env) audioFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.vault, "attachments", "audio"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestProcessFile_CreatesNote(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"um today was great. i worked in the garden"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})
	path := writeClipFile(t, loudSamples(1600))

	notePath, err := e.runner.ProcessFile(context.Background(), path, 16000, 1)
	require.NoError(t, err)

	assert.Equal(t, StateDone, e.runner.State())
	assert.Equal(t, "2024-03-13_0900.md", filepath.Base(notePath))

	data, err := os.ReadFile(notePath)
	require.NoError(t, err)
	md := string(data)
	assert.Contains(t, md, "# Diary Entry - 2024-03-13")
	assert.Contains(t, md, "March 13, 2024 was great")
	assert.NotContains(t, md, "um ")
	assert.Contains(t, md, "mood: happy")

	// Artifact kept and linked.
	files := e.audioFiles(t)
	require.Len(t, files, 1)
	assert.Contains(t, md, "![["+files[0]+"]]")

	// Source file survives under a retention policy.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestProcessFile_DeleteAfterProcessing(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"a quiet walk by the river"}}
	e := newEnv(t, backend, core.RetentionPolicy{DeleteAfterProcessing: true})
	path := writeClipFile(t, loudSamples(1600))

	notePath, err := e.runner.ProcessFile(context.Background(), path, 16000, 1)
	require.NoError(t, err)

	data, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No audio recording")

	assert.Empty(t, e.audioFiles(t))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestProcessFile_DuplicateNoteRejected(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"first take", "second take"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})

	_, err := e.runner.ProcessFile(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.NoError(t, err)

	_, err = e.runner.ProcessFile(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoteExists)

	assert.Equal(t, StateFailed, e.runner.State())
	failure := e.runner.Failure()
	require.NotNil(t, failure)
	assert.Equal(t, core.StagePersisting, failure.Stage)

	// The second run's artifact was discarded, leaving only the first.
	assert.Len(t, e.audioFiles(t), 1)
}

func TestProcessFile_OverwriteReplacesNote(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"first take", "second take"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})
	e.runner.Overwrite = true

	_, err := e.runner.ProcessFile(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.NoError(t, err)

	notePath, err := e.runner.ProcessFile(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.NoError(t, err)

	data, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Second take")
}

func TestProcessFile_LinksRelatedEntries(t *testing.T) {
	backend := &scriptedBackend{texts: []string{
		"work was busy. after work i rested",
		"more work on the work project",
	}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})

	e.now = time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)
	_, err := e.runner.ProcessFile(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.NoError(t, err)

	e.now = time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC)
	notePath, err := e.runner.ProcessFile(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.NoError(t, err)

	data, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- [[2024-03-12_0900]]")
}

func TestProcessFile_SilentClipFails(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"never called"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})
	path := writeClipFile(t, make([]int16, 1600))

	_, err := e.runner.ProcessFile(context.Background(), path, 16000, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyAudio)

	assert.Equal(t, StateFailed, e.runner.State())
	assert.Equal(t, core.StageTranscribing, e.runner.Failure().Stage)
	assert.Zero(t, backend.calls)
}

func TestProcessFile_UnsupportedFormat(t *testing.T) {
	e := newEnv(t, &scriptedBackend{texts: []string{"x"}}, core.RetentionPolicy{})

	_, err := e.runner.ProcessFile(context.Background(), "notes.txt", 16000, 1)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	assert.Equal(t, StateFailed, e.runner.State())
	assert.Equal(t, core.StageLoading, e.runner.Failure().Stage)
}

func TestTranscribeOnly(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"just the words"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})

	tr, err := e.runner.Transcribe(context.Background(), writeClipFile(t, loudSamples(1600)), 16000, 1)
	require.NoError(t, err)

	assert.Equal(t, "just the words", tr.Text)
	assert.Equal(t, "scripted", tr.Backend)
	assert.Equal(t, StateDone, e.runner.State())

	// No note or artifact side effects.
	notes, err := os.ReadDir(filepath.Join(e.vault, "diary"))
	require.NoError(t, err)
	assert.Empty(t, notes)
}

// fakeDevice serves canned PCM then blocks until closed, standing in for
// a live microphone.
type fakeDevice struct {
	samples []int16
}

type fakeStream struct {
	mu     sync.Mutex
	data   []byte
	off    int
	once   sync.Once
	closed chan struct{}
}

func (d *fakeDevice) Open(context.Context, int, int) (io.ReadCloser, error) {
	return &fakeStream{data: audio.EncodeWAV(core.Clip{Samples: d.samples, SampleRate: 16000, Channels: 1})[44:], closed: make(chan struct{})}, nil
}

func (f *fakeStream) Read(p []byte) (int, error) {
	f.mu.Lock()
	if f.off < len(f.data) {
		n := copy(p, f.data[f.off:])
		f.off += n
		f.mu.Unlock()
		return n, nil
	}
	f.mu.Unlock()
	<-f.closed
	return 0, os.ErrClosed
}

func (f *fakeStream) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func TestRecordingRun(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"recorded live"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})
	e.runner.recorder = audio.NewRecorder(
		&fakeDevice{samples: loudSamples(1600)},
		config.Audio{SampleRate: 16000, Channels: 1, ChunkSize: 1024, MaxDuration: 300},
		nil,
	)

	require.NoError(t, e.runner.StartRecording(context.Background()))
	assert.Equal(t, StateRecording, e.runner.State())

	err := e.runner.StartRecording(context.Background())
	assert.ErrorIs(t, err, core.ErrSessionActive)

	notePath, err := e.runner.StopRecording(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDone, e.runner.State())

	data, err := os.ReadFile(notePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Recorded live")
}

func TestCancelRecordingReturnsToIdle(t *testing.T) {
	backend := &scriptedBackend{texts: []string{"discarded"}}
	e := newEnv(t, backend, core.RetentionPolicy{RetentionDays: 30})
	e.runner.recorder = audio.NewRecorder(
		&fakeDevice{samples: loudSamples(1600)},
		config.Audio{SampleRate: 16000, Channels: 1, ChunkSize: 1024, MaxDuration: 300},
		nil,
	)

	require.NoError(t, e.runner.StartRecording(context.Background()))
	e.runner.CancelRecording()

	assert.Equal(t, StateIdle, e.runner.State())
	assert.Zero(t, backend.calls)

	// Runner is reusable after a cancel.
	require.NoError(t, e.runner.StartRecording(context.Background()))
	e.runner.CancelRecording()
}
