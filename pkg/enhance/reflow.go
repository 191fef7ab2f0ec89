package enhance

import (
	"strings"

	"github.com/aretw0/murmur/pkg/core"
)

const sentencesPerParagraph = 3

// Reflow groups sentences into short paragraphs for readability.
func Reflow() Pass {
	return Pass{
		Name: "paragraphs",
		Fn: func(in core.Enhancement, _ Context) core.Enhancement {
			out := in
			sentences := splitSentences(in.Text)
			if len(sentences) <= sentencesPerParagraph {
				return out
			}

			var paragraphs []string
			for i := 0; i < len(sentences); i += sentencesPerParagraph {
				end := i + sentencesPerParagraph
				if end > len(sentences) {
					end = len(sentences)
				}
				paragraphs = append(paragraphs, strings.Join(sentences[i:end], " "))
			}
			out.Text = strings.Join(paragraphs, "\n\n")
			return out
		},
	}
}
