// Package transcript fixes speech-to-text errors in command transcripts
// before classification.
//
// Raw STT output is rarely perfect for the short labels that commands refer
// to: button captions, link texts, form field names. The [Corrector] aligns
// out-of-vocabulary words against the current page's element labels plus the
// built-in command vocabulary using phonetic matching, so "tap the singin
// button" resolves against a "Sign in" button without any network calls.
//
// Each [Correction] records the substitution and its confidence so callers
// can audit or log the changes. The Corrector is stateless and safe for
// concurrent use.
package transcript

import (
	"strings"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/phonetic"
	"github.com/arvindram27/memex-agent/pkg/page"
)

// commandVocabulary is the fixed set of command words always eligible as
// correction targets, independent of the page.
var commandVocabulary = []string{
	"click", "scroll", "search", "submit", "refresh", "translate",
	"screenshot", "password", "username", "email",
}

// Correction captures a single word-level substitution.
type Correction struct {
	// Original is the word as produced by the transcriber.
	Original string `json:"original"`

	// Corrected is the replacement label.
	Corrected string `json:"corrected"`

	// Confidence is the match confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Corrector aligns transcript words against page vocabulary.
type Corrector struct {
	matcher *phonetic.Matcher
}

// NewCorrector creates a Corrector using the given phonetic matcher. A nil
// matcher gets the default thresholds.
func NewCorrector(m *phonetic.Matcher) *Corrector {
	if m == nil {
		m = phonetic.New()
	}
	return &Corrector{matcher: m}
}

// Correct returns text with misheard words replaced by page or command
// vocabulary labels, plus the list of substitutions applied. Words already
// present in the vocabulary (case-insensitively) are left untouched, as are
// words with no sufficiently similar label. desc may be nil.
func (c *Corrector) Correct(text string, desc *page.Description) (string, []Correction) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text, nil
	}

	vocab := c.vocabulary(desc)
	if len(vocab) == 0 {
		return text, nil
	}
	known := make(map[string]struct{}, len(vocab))
	for _, v := range vocab {
		for _, tok := range strings.Fields(strings.ToLower(v)) {
			known[tok] = struct{}{}
		}
	}

	var corrections []Correction
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w

		lower := strings.ToLower(command.Normalize(w))
		if lower == "" {
			continue
		}
		if _, ok := known[lower]; ok {
			continue
		}
		if isCommonWord(lower) {
			continue
		}

		replacement, conf, matched := c.matcher.Match(lower, vocab)
		if !matched || strings.EqualFold(replacement, w) {
			continue
		}
		out[i] = replacement
		corrections = append(corrections, Correction{
			Original:   w,
			Corrected:  replacement,
			Confidence: conf,
		})
	}

	if len(corrections) == 0 {
		return text, nil
	}
	return strings.Join(out, " "), corrections
}

// vocabulary assembles the correction target list: clickable labels, form
// field names/placeholders, then the built-in command vocabulary.
func (c *Corrector) vocabulary(desc *page.Description) []string {
	var vocab []string
	if desc != nil {
		for _, el := range desc.Clickable {
			if t := strings.TrimSpace(el.Text); t != "" {
				vocab = append(vocab, t)
			}
		}
		for _, f := range desc.FormFields {
			if name := f.Attr("name"); name != "" {
				vocab = append(vocab, name)
			}
			if ph := f.Attr("placeholder"); ph != "" {
				vocab = append(vocab, ph)
			}
		}
	}
	return append(vocab, commandVocabulary...)
}

// commonWords are frequent function words never treated as mishears.
var commonWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "to": {}, "on": {}, "in": {}, "of": {},
	"for": {}, "and": {}, "or": {}, "this": {}, "that": {}, "my": {},
	"me": {}, "it": {}, "is": {}, "at": {}, "with": {}, "as": {},
	"go": {}, "tap": {}, "press": {}, "open": {}, "find": {}, "read": {},
	"fill": {}, "enter": {}, "type": {}, "page": {}, "button": {},
	"link": {}, "down": {}, "up": {},
}

func isCommonWord(w string) bool {
	if len(w) <= 2 {
		return true
	}
	_, ok := commonWords[w]
	return ok
}
