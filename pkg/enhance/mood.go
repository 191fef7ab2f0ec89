package enhance

import (
	"strings"

	"github.com/aretw0/murmur/pkg/core"
)

// moodFloor is the minimum share of mood-bearing words required before a
// label is assigned; below it the mood stays unknown.
const moodFloor = 0.01

var moodLexicon = map[core.Mood][]string{
	core.MoodHappy:    {"happy", "glad", "joy", "great", "wonderful", "love", "loved", "fun", "smile", "nice"},
	core.MoodSad:      {"sad", "down", "upset", "cried", "crying", "lonely", "miss", "missed", "terrible", "awful"},
	core.MoodExcited:  {"excited", "thrilled", "amazing", "incredible", "awesome", "pumped"},
	core.MoodAnxious:  {"anxious", "worried", "nervous", "stress", "stressed", "overwhelmed", "afraid", "scared"},
	core.MoodCalm:     {"calm", "peaceful", "relaxed", "quiet", "rested", "serene"},
	core.MoodAngry:    {"angry", "mad", "furious", "annoyed", "frustrated", "hate", "irritated"},
	core.MoodGrateful: {"grateful", "thankful", "blessed", "appreciate", "appreciated"},
}

// DetectMood scores the text against a small lexicon per mood and keeps
// the best label, or unknown when no score clears the floor.
func DetectMood() Pass {
	// Invert the lexicon once for lookup.
	wordMood := make(map[string]core.Mood)
	for mood, words := range moodLexicon {
		for _, w := range words {
			wordMood[w] = mood
		}
	}

	return Pass{
		Name: "mood",
		Fn: func(in core.Enhancement, _ Context) core.Enhancement {
			out := in
			words := strings.Fields(strings.ToLower(in.Text))
			if len(words) == 0 {
				out.Mood = core.MoodUnknown
				return out
			}

			hits := make(map[core.Mood]int)
			for _, w := range words {
				w = strings.Trim(w, ".,!?;:'\"")
				if mood, ok := wordMood[w]; ok {
					hits[mood]++
				}
			}

			best := core.MoodUnknown
			bestHits := 0
			for _, mood := range []core.Mood{
				core.MoodHappy, core.MoodSad, core.MoodExcited, core.MoodAnxious,
				core.MoodCalm, core.MoodAngry, core.MoodGrateful,
			} {
				if hits[mood] > bestHits {
					best = mood
					bestHits = hits[mood]
				}
			}

			if bestHits == 0 || float64(bestHits)/float64(len(words)) < moodFloor {
				out.Mood = core.MoodUnknown
				return out
			}
			out.Mood = best
			return out
		},
	}
}
