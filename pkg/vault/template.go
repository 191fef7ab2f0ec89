package vault

import (
	"fmt"
	"os"
	"regexp"

	"github.com/aretw0/murmur/pkg/core"
)

// placeholders is the fixed vocabulary a note template may reference.
var placeholders = map[string]bool{
	"date":          true,
	"time":          true,
	"duration":      true,
	"mood":          true,
	"topics":        true,
	"word_count":    true,
	"weather":       true,
	"location":      true,
	"related_links": true,
	"audio_link":    true,
	"body":          true,
}

var placeholderRef = regexp.MustCompile(`\{(\w+)\}`)

// defaultTemplate mirrors the built-in note layout used when no template
// file is configured.
const defaultTemplate = `---
date: {date}
time: {time}
duration: {duration}
mood: {mood}
topics: [{topics}]
word_count: {word_count}
weather: {weather}
location: {location}
---
# Diary Entry - {date}

{body}

## Related Entries
{related_links}

## Audio Recording
{audio_link}
`

// Template renders a note from named placeholders. Rendering is a pure
// function of the template text and the variable map.
type Template struct {
	text string
}

// LoadTemplate reads a template file, or falls back to the built-in
// layout when path is empty.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return Template{text: defaultTemplate}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("failed to read template: %w", err)
	}
	return Template{text: string(data)}, nil
}

// Render substitutes every placeholder. A reference outside the known
// vocabulary fails with core.ErrTemplateField instead of silently
// emitting blank text.
func (t Template) Render(vars map[string]string) (string, error) {
	var renderErr error
	out := placeholderRef.ReplaceAllStringFunc(t.text, func(m string) string {
		name := m[1 : len(m)-1]
		if !placeholders[name] {
			if renderErr == nil {
				renderErr = fmt.Errorf("%w: {%s}", core.ErrTemplateField, name)
			}
			return m
		}
		return vars[name]
	})
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}
