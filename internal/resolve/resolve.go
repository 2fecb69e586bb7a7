// Package resolve reconciles a classified voice command with page context to
// produce the final, targeted, confidence-scored action.
//
// Resolution is a binary split on a confidence threshold. A command that
// already clears the threshold is emitted as-is with targets found by the
// standard matcher. An ambiguous command goes through four ordered
// derivations — page-type intent override, target re-extraction, confidence
// recompute, and reasoning/suggestion assembly — each depending on the
// previous result.
//
// Every sub-step is defensive: absent data (no entities, no elements, no
// history) degrades to lower confidence and empty suggestions, never to an
// error. The override rules, alignment-bonus pairs, and per-page-type
// suggestion phrasings are static tables so tests can enumerate them.
package resolve

import (
	"fmt"
	"strings"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/pagectx"
	"github.com/arvindram27/memex-agent/internal/phonetic"
	"github.com/arvindram27/memex-agent/pkg/page"
)

// Tuning holds the resolver's numeric knobs. The defaults are empirically
// chosen; override them through configuration rather than editing the code.
type Tuning struct {
	// ConfidenceThreshold separates confident commands from ambiguous ones.
	ConfidenceThreshold float64

	// TargetBonus is added once per matched target element.
	TargetBonus float64

	// MissingTargetPenalty is subtracted when the resolved intent requires a
	// target but none was found.
	MissingTargetPenalty float64

	// MaxTargets caps the returned target elements.
	MaxTargets int

	// MaxSuggestions caps the alternative phrasings.
	MaxSuggestions int
}

// DefaultTuning returns the standard knob values.
func DefaultTuning() Tuning {
	return Tuning{
		ConfidenceThreshold:  0.6,
		TargetBonus:          0.1,
		MissingTargetPenalty: 0.2,
		MaxTargets:           3,
		MaxSuggestions:       5,
	}
}

// ResolvedCommand is the resolver's output. The original command is carried
// unmodified; the resolved intent may differ.
type ResolvedCommand struct {
	// Original is the command exactly as classified.
	Original command.VoiceCommand `json:"original"`

	// Intent is the possibly-overridden intent.
	Intent command.Intent `json:"intent"`

	// Targets holds up to MaxTargets candidate elements, de-duplicated by
	// (text, selector). They are advisory ranked candidates — the automator
	// may locate elements by its own strategy.
	Targets []page.Element `json:"targets,omitempty"`

	// Confidence is the final score in [0, 1].
	Confidence float64 `json:"confidence"`

	// Confident reports whether the final confidence clears the execution
	// threshold.
	Confident bool `json:"confident"`

	// Reasoning is a human-readable trace of why intent and targets were
	// chosen.
	Reasoning []string `json:"reasoning,omitempty"`

	// Suggestions holds up to MaxSuggestions alternative phrasings.
	Suggestions []string `json:"suggestions,omitempty"`
}

// overrideRule re-maps an ambiguous command's intent when the page type
// strongly implies a different reading. Rules are evaluated in declaration
// order; the first whose page type matches and whose any keyword appears in
// the normalized text fires.
type overrideRule struct {
	Name     string
	PageType pagectx.PageType
	Keywords []string
	Intent   command.Intent
}

var overrideRules = []overrideRule{
	{"search-wording", pagectx.TypeSearchEngine, []string{"search", "find"}, command.IntentSearch},
	{"fill-wording", pagectx.TypeLoginPage, []string{"fill", "enter", "type"}, command.IntentFillForm},
	{"submit-wording", pagectx.TypeLoginPage, []string{"submit", "send", "login", "log in", "sign in"}, command.IntentSubmitForm},
	{"fill-wording", pagectx.TypeFormPage, []string{"fill", "enter", "type"}, command.IntentFillForm},
	{"submit-wording", pagectx.TypeFormPage, []string{"submit", "send"}, command.IntentSubmitForm},
	{"buy-wording", pagectx.TypeECommerce, []string{"buy", "purchase", "add to cart"}, command.IntentClick},
	{"price-wording", pagectx.TypeECommerce, []string{"price", "cost"}, command.IntentExtract},
	{"read-wording", pagectx.TypeNewsArticle, []string{"read", "tell me"}, command.IntentRead},
}

// alignmentBonus lists the recognised good-fit (page type, intent) pairings
// and the confidence bonus each grants.
var alignmentBonus = map[pagectx.PageType]map[command.Intent]float64{
	pagectx.TypeSearchEngine: {
		command.IntentSearch: 0.3,
		command.IntentClick:  0.2,
	},
	pagectx.TypeECommerce: {
		command.IntentClick:   0.25,
		command.IntentExtract: 0.2,
	},
	pagectx.TypeLoginPage: {
		command.IntentFillForm:   0.2,
		command.IntentSubmitForm: 0.2,
	},
	pagectx.TypeFormPage: {
		command.IntentFillForm:   0.2,
		command.IntentSubmitForm: 0.2,
	},
	pagectx.TypeNewsArticle: {
		command.IntentRead: 0.2,
	},
}

// pageSuggestions holds the fixed alternative phrasings per page type. Page
// types absent here fall back to synthesized "click <label>" phrasings.
var pageSuggestions = map[pagectx.PageType][]string{
	pagectx.TypeSearchEngine: {
		"click the first result",
		"search for something else",
		"read the results",
		"open the second result",
		"go back",
	},
	pagectx.TypeECommerce: {
		"add to cart",
		"what is the price",
		"read the reviews",
		"search for another product",
		"go to checkout",
	},
	pagectx.TypeLoginPage: {
		"fill username with your name",
		"fill password",
		"submit the form",
		"clear the form",
	},
	pagectx.TypeFormPage: {
		"fill the first field",
		"clear the form",
		"submit the form",
	},
	pagectx.TypeNewsArticle: {
		"read the article",
		"summarize the page",
		"scroll down",
		"translate to spanish",
	},
	pagectx.TypeSocialMedia: {
		"scroll down",
		"click the first post",
		"go home",
	},
	pagectx.TypeHomepage: {
		"search for something",
		"scroll down",
		"click the menu",
	},
}

// synthesizedSuggestionCap bounds how many "click <label>" phrasings are
// generated when a page type has no fixed list.
const synthesizedSuggestionCap = 3

// Resolver turns classified commands into resolved, targeted ones. It is
// stateless apart from its tuning and safe for concurrent use.
type Resolver struct {
	tuning  Tuning
	matcher *phonetic.Matcher
}

// New creates a Resolver. A nil matcher gets the default phonetic
// thresholds.
func New(tuning Tuning, matcher *phonetic.Matcher) *Resolver {
	if tuning.MaxTargets <= 0 {
		tuning = DefaultTuning()
	}
	if matcher == nil {
		matcher = phonetic.New()
	}
	return &Resolver{tuning: tuning, matcher: matcher}
}

// Resolve reconciles cmd with the page context and snapshot. desc may be
// nil; resolution then proceeds without target elements.
func (r *Resolver) Resolve(cmd command.VoiceCommand, pctx pagectx.Context, desc *page.Description) ResolvedCommand {
	normalized := command.Normalize(cmd.OriginalText)

	if cmd.Confidence >= r.tuning.ConfidenceThreshold {
		targets := r.matchTargets(cmd.Intent, cmd.Entities, desc)
		return ResolvedCommand{
			Original:   cmd,
			Intent:     cmd.Intent,
			Targets:    targets,
			Confidence: cmd.Confidence,
			Confident:  true,
			Reasoning: []string{
				fmt.Sprintf("confidence %.2f clears threshold %.2f, keeping intent %s",
					cmd.Confidence, r.tuning.ConfidenceThreshold, cmd.Intent),
			},
		}
	}

	// 1. Intent override.
	intent, rule := overrideIntent(cmd, pctx.PageType, normalized)

	// 2. Target re-extraction against the (possibly new) intent.
	targets := r.matchTargets(intent, cmd.Entities, desc)

	// 3. Confidence recompute.
	confidence := cmd.Confidence
	reasoning := make([]string, 0, 4)
	if rule != nil {
		reasoning = append(reasoning, fmt.Sprintf("page type %s re-mapped intent %s to %s (%s)",
			pctx.PageType, cmd.Intent, intent, rule.Name))
	} else {
		reasoning = append(reasoning, fmt.Sprintf("no page-type override on %s, keeping intent %s",
			pctx.PageType, intent))
	}
	if bonus := alignmentBonus[pctx.PageType][intent]; bonus > 0 {
		confidence += bonus
		reasoning = append(reasoning, fmt.Sprintf("intent %s fits a %s page, confidence +%.2f",
			intent, pctx.PageType, bonus))
	}
	if n := len(targets); n > 0 {
		confidence += r.tuning.TargetBonus * float64(n)
		reasoning = append(reasoning, fmt.Sprintf("%d candidate element(s) matched, confidence +%.2f",
			n, r.tuning.TargetBonus*float64(n)))
	} else if intent.RequiresTarget() {
		confidence -= r.tuning.MissingTargetPenalty
		reasoning = append(reasoning, fmt.Sprintf("intent %s needs a target but none matched, confidence -%.2f",
			intent, r.tuning.MissingTargetPenalty))
	}
	confidence = command.Clamp(confidence)

	// 4. Alternative phrasings.
	suggestions := r.suggestions(pctx.PageType, desc)

	return ResolvedCommand{
		Original:    cmd,
		Intent:      intent,
		Targets:     targets,
		Confidence:  confidence,
		Confident:   confidence >= r.tuning.ConfidenceThreshold,
		Reasoning:   reasoning,
		Suggestions: suggestions,
	}
}

// overrideIntent applies the first matching override rule. On a search
// engine a click command that already has a target stays a click — the user
// named something visible, which outweighs the page-type prior.
func overrideIntent(cmd command.VoiceCommand, pt pagectx.PageType, normalized string) (command.Intent, *overrideRule) {
	if pt == pagectx.TypeSearchEngine && cmd.Intent == command.IntentClick && len(cmd.Entities) > 0 {
		return cmd.Intent, nil
	}
	for i := range overrideRules {
		rule := &overrideRules[i]
		if rule.PageType != pt {
			continue
		}
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				if rule.Intent == cmd.Intent {
					// Already consistent; nothing to re-map.
					return cmd.Intent, nil
				}
				return rule.Intent, rule
			}
		}
	}
	return cmd.Intent, nil
}

// suggestions returns the fixed per-page-type phrasings, or synthesizes
// "click <label>" phrasings from the first clickable elements when no fixed
// list exists.
func (r *Resolver) suggestions(pt pagectx.PageType, desc *page.Description) []string {
	if fixed, ok := pageSuggestions[pt]; ok {
		if len(fixed) > r.tuning.MaxSuggestions {
			fixed = fixed[:r.tuning.MaxSuggestions]
		}
		out := make([]string, len(fixed))
		copy(out, fixed)
		return out
	}
	if desc == nil {
		return nil
	}
	var out []string
	for _, el := range desc.Clickable {
		label := strings.TrimSpace(el.Text)
		if label == "" {
			continue
		}
		out = append(out, "click "+strings.ToLower(label))
		if len(out) == synthesizedSuggestionCap || len(out) == r.tuning.MaxSuggestions {
			break
		}
	}
	return out
}
