package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/aretw0/murmur/pkg/audio"
	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
)

const (
	notePathLayout = "2006-01-02_1504"
	audioSubdir    = "attachments/audio"
)

// artifactPatterns matches the audio artifacts the cleanup sweep owns.
var artifactPatterns = []string{"*.wav", "*.mp3", "*.m4a"}

// Store persists notes and audio artifacts under the vault path.
type Store struct {
	vaultPath   string
	diaryFolder string
	logger      *slog.Logger
}

// NewStore builds a store from the obsidian configuration.
func NewStore(cfg config.Obsidian, logger *slog.Logger) *Store {
	return &Store{
		vaultPath:   cfg.VaultPath,
		diaryFolder: cfg.DiaryFolder,
		logger:      logger,
	}
}

// Initialize creates the diary and audio directories.
func (s *Store) Initialize() error {
	for _, dir := range []string{s.diaryPath(), s.audioPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}
	return nil
}

func (s *Store) diaryPath() string { return filepath.Join(s.vaultPath, s.diaryFolder) }
func (s *Store) audioPath() string { return filepath.Join(s.vaultPath, audioSubdir) }

// NoteID derives the deterministic note identity from its creation time.
func NoteID(createdAt time.Time) string {
	return createdAt.Format(notePathLayout)
}

// NotePath returns the deterministic target path for a note.
func (s *Store) NotePath(createdAt time.Time) string {
	return filepath.Join(s.diaryPath(), NoteID(createdAt)+".md")
}

// SaveNote persists rendered markdown at the deterministic path. The
// existence check and write happen under the vault lock; an existing
// note fails with core.ErrNoteExists unless overwrite is set.
func (s *Store) SaveNote(createdAt time.Time, markdown string, overwrite bool) (string, error) {
	unlock, err := s.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	path := s.NotePath(createdAt)
	if _, err := os.Stat(path); err == nil && !overwrite {
		return "", fmt.Errorf("%w: %s", core.ErrNoteExists, path)
	}

	if err := writeFileAtomic(path, []byte(markdown), 0644); err != nil {
		return "", err
	}

	if s.logger != nil {
		s.logger.Info("note saved", "path", path)
	}
	return path, nil
}

// SaveAudio persists a clip as a WAV artifact named by capture epoch.
// It returns the artifact reference used in note links.
func (s *Store) SaveAudio(clip core.Clip, capturedAt time.Time) (string, error) {
	name := fmt.Sprintf("diary_%d_%s.wav", capturedAt.UnixMilli(), uuid.NewString()[:8])
	path := filepath.Join(s.audioPath(), name)

	if err := writeFileAtomic(path, audio.EncodeWAV(clip), 0644); err != nil {
		return "", fmt.Errorf("failed to save audio artifact: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("audio artifact saved", "path", path)
	}
	return name, nil
}

// ArtifactPath resolves an artifact reference to its path on disk.
func (s *Store) ArtifactPath(ref string) string {
	return filepath.Join(s.audioPath(), ref)
}

// RemoveArtifact deletes one audio artifact by reference.
func (s *Store) RemoveArtifact(ref string) error {
	return os.Remove(s.ArtifactPath(ref))
}

// StoredNote is the metadata read back from a persisted note.
type StoredNote struct {
	ID        string
	CreatedAt time.Time
	Topics    []string
	Mood      string
}

// RecentNotes lists persisted notes created at or after since, parsed
// from their filenames and frontmatter.
func (s *Store) RecentNotes(since time.Time) ([]StoredNote, error) {
	entries, err := os.ReadDir(s.diaryPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan diary folder: %w", err)
	}

	var notes []StoredNote
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".md")
		createdAt, err := time.ParseInLocation(notePathLayout, id, since.Location())
		if err != nil {
			continue // not a diary note
		}
		if createdAt.Before(since) {
			continue
		}

		note := StoredNote{ID: id, CreatedAt: createdAt}
		if data, err := os.ReadFile(filepath.Join(s.diaryPath(), entry.Name())); err == nil {
			if doc, err := ParseDocument(data); err == nil {
				note.Topics = metaStrings(doc.Meta["topics"])
				if mood, ok := doc.Meta["mood"].(string); ok {
					note.Mood = mood
				}
			}
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func metaStrings(v any) []string {
	switch vals := v.(type) {
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return vals
	case string:
		if vals == "" {
			return nil
		}
		parts := strings.Split(vals, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return nil
	}
}

// Cleanup removes audio artifacts older than the retention window. Each
// file failure is logged and skipped; the sweep never aborts. It returns
// the number of files removed and, when failures occurred, a
// *core.CleanupError summary.
func (s *Store) Cleanup(policy core.RetentionPolicy) (int, error) {
	entries, err := os.ReadDir(s.audioPath())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan audio folder: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -policy.RetentionDays)
	failures := make(map[string]error)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !matchesArtifact(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			failures[entry.Name()] = err
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.audioPath(), entry.Name())); err != nil {
			if s.logger != nil {
				s.logger.Warn("cleanup skipped file", "file", entry.Name(), "error", err)
			}
			failures[entry.Name()] = err
			continue
		}
		removed++
	}

	if s.logger != nil {
		s.logger.Info("cleanup finished", "removed", removed, "skipped", len(failures))
	}
	if len(failures) > 0 {
		return removed, &core.CleanupError{Failures: failures}
	}
	return removed, nil
}

func matchesArtifact(name string) bool {
	for _, pattern := range artifactPatterns {
		if ok, err := doublestar.Match(pattern, strings.ToLower(name)); err == nil && ok {
			return true
		}
	}
	return false
}
