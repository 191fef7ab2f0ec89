package enhance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/murmur/pkg/core"
)

func applyReflow(text string) string {
	pass := Reflow()
	return pass.Fn(core.Enhancement{Text: text, Mood: core.MoodUnknown}, Context{}).Text
}

func TestReflow_GroupsSentencesInThrees(t *testing.T) {
	out := applyReflow("One. Two. Three. Four. Five.")

	paragraphs := strings.Split(out, "\n\n")
	assert.Len(t, paragraphs, 2)
	assert.Equal(t, "One. Two. Three.", paragraphs[0])
	assert.Equal(t, "Four. Five.", paragraphs[1])
}

func TestReflow_ShortTextUntouched(t *testing.T) {
	in := "One. Two. Three."
	assert.Equal(t, in, applyReflow(in))
}
