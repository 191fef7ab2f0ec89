// Package config loads the murmur configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Audio configures capture and decoding.
type Audio struct {
	SampleRate  int `yaml:"sample_rate"`
	Channels    int `yaml:"channels"`
	ChunkSize   int `yaml:"chunk_size"`
	MaxDuration int `yaml:"max_duration"` // seconds
}

// Transcription configures the speech-to-text backend.
type Transcription struct {
	Backend       string  `yaml:"backend"` // "openai" or "server"
	Model         string  `yaml:"model"`
	Language      string  `yaml:"language"`
	Temperature   float64 `yaml:"temperature"`
	InitialPrompt string  `yaml:"initial_prompt"`
	// MaxRetries bounds retries on backend-unavailable failures; 0 keeps
	// the built-in default.
	MaxRetries int `yaml:"max_retries"`
}

// Enhancement toggles the text enhancement passes.
type Enhancement struct {
	FillerWords    []string `yaml:"filler_words"`
	RemoveFillers  *bool    `yaml:"remove_fillers"`
	FixGrammar     *bool    `yaml:"fix_grammar"`
	DetectMood     *bool    `yaml:"detect_mood"`
	DetectTopics   *bool    `yaml:"detect_topics"`
	NormalizeDates *bool    `yaml:"normalize_dates"`
	Paragraphs     *bool    `yaml:"paragraphs"`
}

// Privacy configures audio artifact retention.
type Privacy struct {
	DeleteAfterProcessing bool `yaml:"delete_audio_after_processing"`
	RetentionDays         int  `yaml:"retention_days"`
}

// Obsidian locates the vault the notes land in.
type Obsidian struct {
	VaultPath    string `yaml:"vault_path"`
	DiaryFolder  string `yaml:"diary_folder"`
	TemplatePath string `yaml:"template_path"`
}

// Config is the full configuration surface.
type Config struct {
	Audio         Audio         `yaml:"audio"`
	Transcription Transcription `yaml:"transcription"`
	Enhancement   Enhancement   `yaml:"enhancement"`
	Privacy       Privacy       `yaml:"privacy"`
	Obsidian      Obsidian      `yaml:"obsidian"`
}

// Default returns a configuration with every field set to its default.
func Default() Config {
	return Config{
		Audio: Audio{
			SampleRate:  16000,
			Channels:    1,
			ChunkSize:   1024,
			MaxDuration: 300,
		},
		Transcription: Transcription{
			Backend:       "openai",
			Model:         "whisper-1",
			Language:      "en",
			Temperature:   0.0,
			InitialPrompt: "This is a diary entry.",
			MaxRetries:    3,
		},
		Enhancement: Enhancement{
			FillerWords: []string{"um", "uh", "like", "you know", "i mean"},
		},
		Privacy: Privacy{
			DeleteAfterProcessing: false,
			RetentionDays:         30,
		},
		Obsidian: Obsidian{
			DiaryFolder: "diary",
		},
	}
}

// Load reads a YAML config file, layering it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels)
	}
	if c.Audio.ChunkSize <= 0 {
		return fmt.Errorf("audio.chunk_size must be positive, got %d", c.Audio.ChunkSize)
	}
	if c.Audio.MaxDuration <= 0 {
		return fmt.Errorf("audio.max_duration must be positive, got %d", c.Audio.MaxDuration)
	}
	if c.Transcription.Temperature < 0 || c.Transcription.Temperature > 1 {
		return fmt.Errorf("transcription.temperature must be in [0,1], got %v", c.Transcription.Temperature)
	}
	if c.Transcription.MaxRetries < 0 {
		return fmt.Errorf("transcription.max_retries must be >= 0, got %d", c.Transcription.MaxRetries)
	}
	if c.Privacy.RetentionDays < 0 {
		return fmt.Errorf("privacy.retention_days must be >= 0, got %d", c.Privacy.RetentionDays)
	}
	if c.Obsidian.VaultPath == "" {
		return fmt.Errorf("obsidian.vault_path is required")
	}
	return nil
}

// MaxDurationTime returns the capture ceiling as a duration.
func (a Audio) MaxDurationTime() time.Duration {
	return time.Duration(a.MaxDuration) * time.Second
}

// Enabled resolves a tri-state pass toggle; unset means enabled.
func Enabled(v *bool) bool {
	return v == nil || *v
}
