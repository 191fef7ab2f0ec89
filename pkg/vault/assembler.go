package vault

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/murmur/pkg/core"
)

const (
	// relatedLookback bounds the window scanned for related entries.
	relatedLookback = 7 * 24 * time.Hour
	// relatedTopK bounds how many related entries a note links.
	relatedTopK = 5
)

// Library lists previously persisted notes for related-entry resolution.
// *Store satisfies it.
type Library interface {
	RecentNotes(since time.Time) ([]StoredNote, error)
}

// Assembler merges enhanced text and derived metadata into a final note.
// It performs no I/O beyond reading the library; persistence is the
// store's job.
type Assembler struct {
	template Template
	library  Library

	// Weather and Location are stub providers; real data sourcing is out
	// of scope.
	Weather  func() string
	Location func() string
}

// NewAssembler wires a template and note library.
func NewAssembler(template Template, library Library) *Assembler {
	return &Assembler{
		template: template,
		library:  library,
		Weather:  func() string { return "Sunny, 72°F" },
		Location: func() string { return "Home Office" },
	}
}

// Assembled pairs the note data with its rendered markdown.
type Assembled struct {
	Note     core.Note
	Markdown string
}

// Assemble builds the note for one pipeline run. audioLink may be empty
// when no artifact was kept.
func (a *Assembler) Assemble(enh core.Enhancement, createdAt time.Time, duration time.Duration, audioLink string) (Assembled, error) {
	related, err := a.relatedEntries(createdAt, enh.Topics)
	if err != nil {
		return Assembled{}, fmt.Errorf("failed to resolve related entries: %w", err)
	}

	meta := core.NoteMeta{
		CreatedAt: createdAt,
		Duration:  duration,
		Mood:      enh.Mood,
		Topics:    enh.Topics,
		WordCount: enh.WordCount,
		Weather:   a.Weather(),
		Location:  a.Location(),
		Related:   related,
	}

	markdown, err := a.template.Render(map[string]string{
		"date":          createdAt.Format("2006-01-02"),
		"time":          createdAt.Format("15:04"),
		"duration":      formatDuration(duration),
		"mood":          string(meta.Mood),
		"topics":        strings.Join(meta.Topics, ", "),
		"word_count":    strconv.Itoa(meta.WordCount),
		"weather":       meta.Weather,
		"location":      meta.Location,
		"related_links": renderRelated(related),
		"audio_link":    renderAudioLink(audioLink),
		"body":          enh.Text,
	})
	if err != nil {
		return Assembled{}, err
	}

	return Assembled{
		Note: core.Note{
			Meta:      meta,
			Body:      enh.Text,
			AudioLink: audioLink,
		},
		Markdown: markdown,
	}, nil
}

// relatedEntries ranks prior notes in the lookback window by shared
// topic count, then recency, and keeps the top K. The result is
// deterministic for a given prior-note set.
func (a *Assembler) relatedEntries(now time.Time, topics []string) ([]string, error) {
	prior, err := a.library.RecentNotes(now.Add(-relatedLookback))
	if err != nil {
		return nil, err
	}

	topicSet := make(map[string]bool, len(topics))
	for _, t := range topics {
		topicSet[strings.ToLower(t)] = true
	}

	type scored struct {
		note    StoredNote
		overlap int
	}
	var candidates []scored
	for _, n := range prior {
		if !n.CreatedAt.Before(now) {
			continue
		}
		overlap := 0
		for _, t := range n.Topics {
			if topicSet[strings.ToLower(t)] {
				overlap++
			}
		}
		candidates = append(candidates, scored{note: n, overlap: overlap})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].overlap != candidates[j].overlap {
			return candidates[i].overlap > candidates[j].overlap
		}
		return candidates[i].note.CreatedAt.After(candidates[j].note.CreatedAt)
	})

	if len(candidates) > relatedTopK {
		candidates = candidates[:relatedTopK]
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.note.ID)
	}
	return ids, nil
}

func renderRelated(ids []string) string {
	if len(ids) == 0 {
		return "No recent entries"
	}
	links := make([]string, len(ids))
	for i, id := range ids {
		links[i] = fmt.Sprintf("- [[%s]]", id)
	}
	return strings.Join(links, "\n")
}

func renderAudioLink(ref string) string {
	if ref == "" {
		return "No audio recording"
	}
	return fmt.Sprintf("![[%s]]", ref)
}

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	h, m, s := total/3600, (total/60)%60, total%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
