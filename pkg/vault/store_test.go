package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(config.Obsidian{VaultPath: t.TempDir(), DiaryFolder: "diary"}, nil)
	require.NoError(t, s.Initialize())
	return s
}

const noteMarkdown = `---
date: 2024-03-13
mood: happy
topics: [work, garden]
---
# Diary Entry - 2024-03-13

A fine day.
`

func TestStore_SaveNote(t *testing.T) {
	s := testStore(t)
	at := time.Date(2024, time.March, 13, 9, 30, 0, 0, time.UTC)

	path, err := s.SaveNote(at, noteMarkdown, false)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-13_0930.md", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, noteMarkdown, string(data))
}

func TestStore_SaveNote_ExistingRejected(t *testing.T) {
	s := testStore(t)
	at := time.Date(2024, time.March, 13, 9, 30, 0, 0, time.UTC)

	_, err := s.SaveNote(at, noteMarkdown, false)
	require.NoError(t, err)

	_, err = s.SaveNote(at, "replacement", false)
	assert.ErrorIs(t, err, core.ErrNoteExists)

	path, err := s.SaveNote(at, "replacement", true)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replacement", string(data))
}

func TestStore_SaveAudioRoundTrip(t *testing.T) {
	s := testStore(t)
	clip := core.Clip{Samples: []int16{300, -300, 600}, SampleRate: 16000, Channels: 1}

	ref, err := s.SaveAudio(clip, time.Now())
	require.NoError(t, err)
	assert.Contains(t, ref, "diary_")

	data, err := os.ReadFile(s.ArtifactPath(ref))
	require.NoError(t, err)
	decoded, err := audio.DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, clip.Samples, decoded.Samples)

	require.NoError(t, s.RemoveArtifact(ref))
	_, err = os.Stat(s.ArtifactPath(ref))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_RecentNotes(t *testing.T) {
	s := testStore(t)
	old := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	recent := time.Date(2024, time.March, 12, 9, 0, 0, 0, time.UTC)

	_, err := s.SaveNote(old, noteMarkdown, false)
	require.NoError(t, err)
	_, err = s.SaveNote(recent, noteMarkdown, false)
	require.NoError(t, err)

	// A stray non-diary file is skipped.
	require.NoError(t, os.WriteFile(filepath.Join(s.diaryPath(), "inbox.md"), []byte("scratch"), 0o644))

	notes, err := s.RecentNotes(time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Equal(t, "2024-03-12_0900", notes[0].ID)
	assert.Equal(t, []string{"work", "garden"}, notes[0].Topics)
	assert.Equal(t, "happy", notes[0].Mood)
}

func TestStore_CleanupRemovesExpiredArtifacts(t *testing.T) {
	s := testStore(t)

	oldRef, err := s.SaveAudio(core.Clip{Samples: []int16{1}, SampleRate: 16000, Channels: 1}, time.Now())
	require.NoError(t, err)
	freshRef, err := s.SaveAudio(core.Clip{Samples: []int16{2}, SampleRate: 16000, Channels: 1}, time.Now())
	require.NoError(t, err)

	stale := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(s.ArtifactPath(oldRef), stale, stale))

	// Non-artifact files in the audio folder are never touched.
	other := filepath.Join(s.audioPath(), "README.md")
	require.NoError(t, os.WriteFile(other, []byte("notes"), 0o644))
	require.NoError(t, os.Chtimes(other, stale, stale))

	removed, err := s.Cleanup(core.RetentionPolicy{RetentionDays: 30})
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	_, err = os.Stat(s.ArtifactPath(oldRef))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(s.ArtifactPath(freshRef))
	assert.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestStore_CleanupEmptyVault(t *testing.T) {
	s := NewStore(config.Obsidian{VaultPath: filepath.Join(t.TempDir(), "missing"), DiaryFolder: "diary"}, nil)

	removed, err := s.Cleanup(core.RetentionPolicy{RetentionDays: 30})
	require.NoError(t, err)
	assert.Zero(t, removed)
}
