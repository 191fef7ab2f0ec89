package enhance

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/murmur/pkg/core"
)

var (
	spaceBeforePunct = regexp.MustCompile(`\s+([.,!?;:])`)
	punctNoSpace     = regexp.MustCompile(`([.,!?;:])([A-Za-z])`)
	sentenceEnd      = regexp.MustCompile(`([.!?])\s+`)
)

// FixGrammar normalizes whitespace, punctuation spacing, and sentence
// capitalization. It is a pure function of the text.
func FixGrammar() Pass {
	return Pass{
		Name: "grammar",
		Fn: func(in core.Enhancement, _ Context) core.Enhancement {
			out := in
			text := collapseSpace.ReplaceAllString(strings.TrimSpace(in.Text), " ")
			text = spaceBeforePunct.ReplaceAllString(text, "$1")
			text = punctNoSpace.ReplaceAllString(text, "$1 $2")
			out.Text = capitalizeSentences(text)
			return out
		},
	}
}

func capitalizeSentences(text string) string {
	sentences := splitSentences(text)
	for i, s := range sentences {
		sentences[i] = upperFirst(s)
	}
	return strings.Join(sentences, " ")
}

// splitSentences breaks text on terminal punctuation followed by space,
// keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	marked := sentenceEnd.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

func upperFirst(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			return string(runes)
		}
		if !unicode.IsSpace(r) && r != '"' && r != '\'' {
			break
		}
	}
	return s
}
