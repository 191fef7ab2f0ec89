package enhance

import (
	"sort"
	"strings"
	"unicode"

	"github.com/aretw0/murmur/pkg/core"
)

const maxTopics = 10

var stopwords = map[string]bool{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "if", "then", "than", "that", "this",
		"these", "those", "i", "me", "my", "we", "our", "you", "your", "he", "she",
		"it", "its", "they", "them", "their", "was", "were", "is", "are", "be",
		"been", "being", "am", "do", "does", "did", "have", "has", "had", "will",
		"would", "could", "should", "can", "may", "might", "must", "to", "of",
		"in", "on", "at", "by", "for", "with", "about", "into", "from", "up",
		"down", "out", "over", "under", "again", "just", "very", "really", "also",
		"there", "here", "when", "where", "what", "which", "who", "how", "why",
		"not", "no", "so", "too", "some", "any", "all", "both", "each", "more",
		"most", "other", "such", "only", "own", "same", "because", "while",
		"today", "yesterday", "tomorrow", "went", "got", "get", "going", "thing",
		"things", "lot", "bit", "day", "time",
	} {
		stopwords[w] = true
	}
}

// DetectTopics extracts salient topics: frequent content words plus
// mid-sentence capitalized tokens (likely proper nouns). Topics are
// case-normalized, deduplicated, and ordered by frequency then
// alphabetically for determinism.
func DetectTopics() Pass {
	return Pass{
		Name: "topics",
		Fn: func(in core.Enhancement, _ Context) core.Enhancement {
			out := in
			counts := make(map[string]int)
			proper := make(map[string]bool)

			sentenceStart := true
			for _, raw := range strings.Fields(in.Text) {
				word := strings.TrimFunc(raw, func(r rune) bool {
					return !unicode.IsLetter(r) && !unicode.IsDigit(r)
				})
				ends := strings.ContainsAny(raw, ".!?")
				if word == "" {
					sentenceStart = ends || sentenceStart
					continue
				}

				lower := strings.ToLower(word)
				if !stopwords[lower] && len(lower) >= 3 && isAlphabetic(lower) {
					counts[lower]++
					if !sentenceStart && unicode.IsUpper([]rune(word)[0]) {
						proper[lower] = true
					}
				}
				sentenceStart = ends
			}

			var topics []string
			for w, n := range counts {
				if n >= 2 || proper[w] {
					topics = append(topics, w)
				}
			}
			sort.Slice(topics, func(i, j int) bool {
				if counts[topics[i]] != counts[topics[j]] {
					return counts[topics[i]] > counts[topics[j]]
				}
				return topics[i] < topics[j]
			})
			if len(topics) > maxTopics {
				topics = topics[:maxTopics]
			}

			out.Topics = topics
			return out
		},
	}
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
