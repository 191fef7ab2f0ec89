package enhance

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/murmur/pkg/core"
)

var collapseSpace = regexp.MustCompile(`\s+`)

// RemoveFillers strips the configured filler tokens outside quoted
// speech. Matching is case-insensitive and word-bounded, so fillers
// inside longer words survive ("likely" keeps its "like").
func RemoveFillers(words []string) Pass {
	// Longest first so "you know" wins over "you".
	sorted := append([]string(nil), words...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	patterns := make([]*regexp.Regexp, 0, len(sorted))
	for _, w := range sorted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b,?`))
	}

	return Pass{
		Name: "fillers",
		Fn: func(in core.Enhancement, _ Context) core.Enhancement {
			out := in
			// Split on double quotes: even segments are outside quoted
			// speech, odd segments are inside and left untouched.
			segments := strings.Split(in.Text, `"`)
			removed := 0
			for i := 0; i < len(segments); i += 2 {
				for _, re := range patterns {
					matches := re.FindAllString(segments[i], -1)
					if len(matches) == 0 {
						continue
					}
					removed += len(matches)
					segments[i] = re.ReplaceAllString(segments[i], " ")
				}
				segments[i] = tidySpacing(segments[i])
			}
			out.Text = strings.TrimSpace(strings.Join(segments, `"`))
			out.RemovedFillers = in.RemovedFillers + removed
			return out
		},
	}
}

func tidySpacing(s string) string {
	s = collapseSpace.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, " ,", ",")
	s = strings.ReplaceAll(s, " .", ".")
	s = strings.ReplaceAll(s, " !", "!")
	s = strings.ReplaceAll(s, " ?", "?")
	return s
}
