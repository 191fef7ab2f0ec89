// Package enhance applies an ordered chain of pure text-transform passes
// to a raw transcript.
package enhance

import (
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/murmur/pkg/config"
	"github.com/aretw0/murmur/pkg/core"
)

// Context carries read-only facts available to every pass.
type Context struct {
	// CreatedAt anchors relative date references ("yesterday").
	CreatedAt time.Time
}

// Pass is one transform step. A pass must be a pure function of its
// inputs and may only write the fields it owns.
type Pass struct {
	Name string
	Fn   func(core.Enhancement, Context) core.Enhancement
}

// Chain is the configured, ordered pass list.
type Chain struct {
	passes []Pass
	logger *slog.Logger
}

// NewChain assembles the pass chain from the enhancement configuration.
// Each pass is independently skippable; downstream passes tolerate
// untouched upstream fields.
func NewChain(cfg config.Enhancement, logger *slog.Logger) *Chain {
	var passes []Pass
	if config.Enabled(cfg.RemoveFillers) {
		passes = append(passes, RemoveFillers(cfg.FillerWords))
	}
	if config.Enabled(cfg.FixGrammar) {
		passes = append(passes, FixGrammar())
	}
	if config.Enabled(cfg.DetectMood) {
		passes = append(passes, DetectMood())
	}
	if config.Enabled(cfg.DetectTopics) {
		passes = append(passes, DetectTopics())
	}
	if config.Enabled(cfg.NormalizeDates) {
		passes = append(passes, NormalizeDates())
	}
	if config.Enabled(cfg.Paragraphs) {
		passes = append(passes, Reflow())
	}
	return &Chain{passes: passes, logger: logger}
}

// Run feeds the transcript through every pass. A pass that fails
// internally degrades to its neutral default; the chain never aborts.
func (c *Chain) Run(text string, pctx Context) core.Enhancement {
	res := core.Enhancement{Text: text, Mood: core.MoodUnknown}
	for _, p := range c.passes {
		res = c.apply(p, res, pctx)
	}
	res.WordCount = len(strings.Fields(res.Text))
	return res
}

func (c *Chain) apply(p Pass, in core.Enhancement, pctx Context) (out core.Enhancement) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Warn("enhancement pass failed, keeping neutral result", "pass", p.Name, "panic", r)
			}
			out = in
		}
	}()
	return p.Fn(in, pctx)
}
