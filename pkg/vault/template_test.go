package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/murmur/pkg/core"
)

func defaultVars() map[string]string {
	return map[string]string{
		"date":          "2024-03-13",
		"time":          "09:30",
		"duration":      "1m 5s",
		"mood":          "happy",
		"topics":        "work, garden",
		"word_count":    "42",
		"weather":       "Sunny, 72°F",
		"location":      "Home Office",
		"related_links": "No recent entries",
		"audio_link":    "No audio recording",
		"body":          "A fine day.",
	}
}

func TestTemplate_DefaultRender(t *testing.T) {
	tpl, err := LoadTemplate("")
	require.NoError(t, err)

	out, err := tpl.Render(defaultVars())
	require.NoError(t, err)

	assert.Contains(t, out, "# Diary Entry - 2024-03-13")
	assert.Contains(t, out, "mood: happy")
	assert.Contains(t, out, "topics: [work, garden]")
	assert.Contains(t, out, "A fine day.")
}

func TestTemplate_DeterministicRender(t *testing.T) {
	tpl, err := LoadTemplate("")
	require.NoError(t, err)

	first, err := tpl.Render(defaultVars())
	require.NoError(t, err)
	second, err := tpl.Render(defaultVars())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTemplate_UnknownPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.md")
	require.NoError(t, os.WriteFile(path, []byte("# {date}\n{horoscope}\n"), 0o644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)

	_, err = tpl.Render(defaultVars())
	assert.ErrorIs(t, err, core.ErrTemplateField)
	assert.Contains(t, err.Error(), "{horoscope}")
}

func TestTemplate_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.md")
	require.NoError(t, os.WriteFile(path, []byte("{date}: {body}"), 0o644))

	tpl, err := LoadTemplate(path)
	require.NoError(t, err)

	out, err := tpl.Render(defaultVars())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-13: A fine day.", out)
}

func TestTemplate_MissingFile(t *testing.T) {
	_, err := LoadTemplate(filepath.Join(t.TempDir(), "absent.md"))
	assert.Error(t, err)
}
