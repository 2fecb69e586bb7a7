// Package suggest proposes likely next actions from a page snapshot before
// the user says anything. Rules are keyed on page type with a generic
// reading rule as fallback; each rule carries a fixed confidence reflecting
// how reliably its page signal predicts the action.
package suggest

import (
	"strings"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/pagectx"
	"github.com/arvindram27/memex-agent/pkg/page"
)

// Action is a single proactive proposal. Elements names the page elements
// the action would touch, ExamplePhrase is a voice command that triggers it.
type Action struct {
	Intent        command.Intent `json:"intent"`
	Description   string         `json:"description"`
	Elements      []page.Element `json:"elements,omitempty"`
	Confidence    float64        `json:"confidence"`
	ExamplePhrase string         `json:"example_phrase"`
}

// Fixed per-rule confidences. A form with empty fields almost always wants
// filling; a long article only sometimes wants reading aloud.
const (
	searchResultConfidence = 0.8
	fillFormConfidence     = 0.9
	commerceConfidence     = 0.85
	readConfidence         = 0.7
)

// MaxSuggestions caps the proposals per page.
const MaxSuggestions = 3

// readTextThreshold is the visible-text length above which reading aloud is
// suggested.
const readTextThreshold = 500

var commerceActionWords = []string{"add to cart", "buy", "purchase", "checkout", "order"}

// Engine derives proactive actions. Stateless and safe for concurrent use.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Suggest returns up to MaxSuggestions actions for the page, most confident
// rule first. A nil description yields no suggestions.
func (e *Engine) Suggest(pctx pagectx.Context, desc *page.Description) []Action {
	if desc == nil {
		return nil
	}
	var out []Action

	switch pctx.PageType {
	case pagectx.TypeSearchEngine:
		if a, ok := firstResultAction(desc); ok {
			out = append(out, a)
		}
	case pagectx.TypeLoginPage, pagectx.TypeFormPage:
		if a, ok := fillFieldsAction(desc); ok {
			out = append(out, a)
		}
	case pagectx.TypeECommerce:
		if a, ok := commerceAction(desc); ok {
			out = append(out, a)
		}
	}

	if len(desc.VisibleText) > readTextThreshold {
		out = append(out, Action{
			Intent:        command.IntentRead,
			Description:   "Read the page content aloud",
			Confidence:    readConfidence,
			ExamplePhrase: "read this page",
		})
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// firstResultAction proposes opening the first clickable link, which on a
// results page is the top hit.
func firstResultAction(desc *page.Description) (Action, bool) {
	for _, el := range desc.Clickable {
		if el.Kind != page.KindLink || strings.TrimSpace(el.Text) == "" {
			continue
		}
		return Action{
			Intent:        command.IntentClick,
			Description:   "Open the first search result: " + strings.TrimSpace(el.Text),
			Elements:      []page.Element{el},
			Confidence:    searchResultConfidence,
			ExamplePhrase: "click the first result",
		}, true
	}
	return Action{}, false
}

// fillFieldsAction proposes filling every form field that has no value yet.
func fillFieldsAction(desc *page.Description) (Action, bool) {
	var empty []page.Element
	for _, el := range desc.FormFields {
		if el.Attr("value") == "" {
			empty = append(empty, el)
		}
	}
	if len(empty) == 0 {
		return Action{}, false
	}
	return Action{
		Intent:        command.IntentFillForm,
		Description:   "Fill out the empty form fields",
		Elements:      empty,
		Confidence:    fillFormConfidence,
		ExamplePhrase: "fill in the form",
	}, true
}

// commerceAction proposes the page's primary purchase action when a button
// labelled with purchase wording is present.
func commerceAction(desc *page.Description) (Action, bool) {
	for _, el := range desc.Clickable {
		label := strings.ToLower(el.Text)
		for _, w := range commerceActionWords {
			if strings.Contains(label, w) {
				return Action{
					Intent:        command.IntentClick,
					Description:   "Press " + strings.TrimSpace(el.Text),
					Elements:      []page.Element{el},
					Confidence:    commerceConfidence,
					ExamplePhrase: "add to cart",
				}, true
			}
		}
	}
	return Action{}, false
}
