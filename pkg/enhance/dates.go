package enhance

import (
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/murmur/pkg/core"
)

const dateLayout = "January 2, 2006"

var (
	simpleDateRef  = regexp.MustCompile(`(?i)\b(today|yesterday|tomorrow)\b`)
	weekdayDateRef = regexp.MustCompile(`(?i)\b(last|next)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// NormalizeDates rewrites informal date references into absolute dates
// anchored at the recording time.
func NormalizeDates() Pass {
	return Pass{
		Name: "dates",
		Fn: func(in core.Enhancement, pctx Context) core.Enhancement {
			out := in
			if pctx.CreatedAt.IsZero() {
				return out
			}
			text := simpleDateRef.ReplaceAllStringFunc(in.Text, func(m string) string {
				switch strings.ToLower(m) {
				case "today":
					return pctx.CreatedAt.Format(dateLayout)
				case "yesterday":
					return pctx.CreatedAt.AddDate(0, 0, -1).Format(dateLayout)
				default:
					return pctx.CreatedAt.AddDate(0, 0, 1).Format(dateLayout)
				}
			})
			text = weekdayDateRef.ReplaceAllStringFunc(text, func(m string) string {
				parts := strings.Fields(strings.ToLower(m))
				target, ok := weekdays[parts[1]]
				if !ok {
					return m
				}
				return resolveWeekday(pctx.CreatedAt, target, parts[0] == "next").Format(dateLayout)
			})
			out.Text = text
			return out
		},
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// resolveWeekday finds the nearest matching weekday strictly before
// (last) or after (next) the anchor date.
func resolveWeekday(anchor time.Time, target time.Weekday, next bool) time.Time {
	step := -1
	if next {
		step = 1
	}
	t := anchor
	for i := 0; i < 7; i++ {
		t = t.AddDate(0, 0, step)
		if t.Weekday() == target {
			return t
		}
	}
	return anchor
}
