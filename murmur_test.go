package murmur_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/murmur"
	"github.com/aretw0/murmur/pkg/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Obsidian.VaultPath = t.TempDir()
	return cfg
}

func TestNew_InitializesVault(t *testing.T) {
	cfg := testConfig(t)

	runner, err := murmur.New(cfg, murmur.WithBackend(cannedBackend{}))
	require.NoError(t, err)
	require.NotNil(t, runner)

	for _, dir := range []string{
		filepath.Join(cfg.Obsidian.VaultPath, "diary"),
		filepath.Join(cfg.Obsidian.VaultPath, "attachments", "audio"),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.Backend = "telepathy"

	_, err := murmur.New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telepathy")
}

func TestNew_ServerBackendNeedsURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transcription.Backend = "server"
	t.Setenv("WHISPER_SERVER_URL", "")

	_, err := murmur.New(cfg)
	assert.Error(t, err)
}
