package command

import (
	"strings"
	"unicode"

	"github.com/arvindram27/memex-agent/pkg/page"
)

// intentTriggers pairs one intent with its ordered trigger phrases. The table
// below is an ordered slice, not a map: when two intents score the same
// trigger count the first-declared intent wins. That tie-break is intentional
// and pinned by tests — do not reorder entries casually.
type intentTriggers struct {
	Intent   Intent
	Triggers []string
}

// triggerTable drives classification. Trigger phrases are matched as
// substrings of the normalized command text; the intent with the most
// matching phrases wins.
var triggerTable = []intentTriggers{
	{IntentNavigate, []string{"go to", "navigate to", "open the site", "visit", "take me to"}},
	{IntentGoBack, []string{"go back", "previous page", "back up"}},
	{IntentGoForward, []string{"go forward", "next page", "forward"}},
	{IntentRefresh, []string{"refresh", "reload"}},
	{IntentGoHome, []string{"go home", "home page", "homepage"}},
	{IntentClick, []string{"click", "tap", "press", "choose", "select the"}},
	{IntentScroll, []string{"scroll", "page down", "page up", "move down", "move up"}},
	{IntentSwipe, []string{"swipe"}},
	{IntentLongPress, []string{"long press", "press and hold", "hold down"}},
	{IntentFillForm, []string{"fill", "enter", "type", "input", "write in"}},
	{IntentSubmitForm, []string{"submit", "send the form", "send form"}},
	{IntentClearForm, []string{"clear", "reset the form", "erase"}},
	{IntentSearch, []string{"search", "search for", "look for", "google"}},
	{IntentFindText, []string{"find text", "where is", "where does it say", "locate"}},
	{IntentFindElement, []string{"find", "show me the", "highlight"}},
	{IntentRead, []string{"read", "read aloud", "tell me what"}},
	{IntentExtract, []string{"extract", "get the", "what is the", "pull out"}},
	{IntentSummarize, []string{"summarize", "summarise", "summary", "tldr"}},
	{IntentTranslate, []string{"translate"}},
	{IntentCopy, []string{"copy"}},
	{IntentShare, []string{"share"}},
	{IntentScreenshot, []string{"screenshot", "capture the screen", "take a picture"}},
	{IntentHelp, []string{"help", "what can you do", "what can i say"}},
	{IntentStop, []string{"stop", "cancel", "never mind", "abort"}},
}

// specialCase is a fallback heuristic applied in order when no trigger phrase
// matched at all. The first case whose every keyword alternative misses is
// skipped; the first case with a hit decides the intent.
type specialCase struct {
	Name     string
	Keywords []string
	Intent   Intent
}

// specialCases rescue common phrasings that carry no trigger verb.
var specialCases = []specialCase{
	{"auth-implies-form", []string{"sign in", "log in", "login", "sign up"}, IntentFillForm},
	{"price-implies-extract", []string{"price", "how much", "cost"}, IntentExtract},
	{"page-content-implies-read", []string{"what does it say", "what is on this page"}, IntentRead},
}

// Normalize lowercases text, strips every rune that is not a letter, digit,
// or whitespace, and collapses runs of whitespace to single spaces.
func Normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Classifier maps transcripts to [VoiceCommand] values. It is stateless and
// safe for concurrent use; all matching is driven by the package tables.
type Classifier struct{}

// NewClassifier returns a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify parses one transcript into a [VoiceCommand]. desc may be nil; when
// present, element labels on the page participate in entity extraction.
//
// Classify is total: it never fails, and text matching zero trigger phrases
// and zero special cases yields [IntentUnknown] with confidence 0.
func (c *Classifier) Classify(text string, desc *page.Description) VoiceCommand {
	normalized := Normalize(text)

	intent := classifyIntent(normalized)
	entities, params := extractEntities(intent, text, normalized, desc)

	return VoiceCommand{
		Intent:       intent,
		Entities:     entities,
		OriginalText: text,
		Confidence:   Score(intent, len(entities), normalized),
		Parameters:   params,
	}
}

// classifyIntent scores every intent by trigger-phrase substring count.
// Highest count wins; ties go to the first-declared intent. Zero matches
// falls through to the ordered special cases, then to IntentUnknown.
func classifyIntent(normalized string) Intent {
	if normalized == "" {
		return IntentUnknown
	}

	best := IntentUnknown
	bestCount := 0
	for _, row := range triggerTable {
		count := 0
		for _, phrase := range row.Triggers {
			if strings.Contains(normalized, phrase) {
				count++
			}
		}
		if count > bestCount {
			best = row.Intent
			bestCount = count
		}
	}
	if bestCount > 0 {
		return best
	}

	for _, sc := range specialCases {
		for _, kw := range sc.Keywords {
			if strings.Contains(normalized, kw) {
				return sc.Intent
			}
		}
	}

	return IntentUnknown
}
