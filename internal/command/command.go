// Package command implements the voice-command understanding pipeline front
// half: the closed intent vocabulary, keyword/phrase intent classification,
// intent-specific entity extraction, and structural confidence scoring.
//
// Everything in this package is a pure function of its inputs. Classification
// never fails — unrecognisable text classifies to [IntentUnknown] with
// confidence 0 rather than producing an error. The matching heuristics are
// deliberately data, not code: trigger phrases, colour/element patterns,
// direction keywords, field-type keywords, and the language table are static
// package-level tables so tests can enumerate their exact coverage.
package command

// Intent is the closed-vocabulary symbolic action a command maps to.
// The set is exhaustive; adding a value means extending the trigger table,
// the extractor dispatch, and the resolver override rules.
type Intent string

const (
	IntentNavigate    Intent = "navigate"
	IntentGoBack      Intent = "go_back"
	IntentGoForward   Intent = "go_forward"
	IntentRefresh     Intent = "refresh"
	IntentGoHome      Intent = "go_home"
	IntentClick       Intent = "click"
	IntentScroll      Intent = "scroll"
	IntentSwipe       Intent = "swipe"
	IntentLongPress   Intent = "long_press"
	IntentFillForm    Intent = "fill_form"
	IntentSubmitForm  Intent = "submit_form"
	IntentClearForm   Intent = "clear_form"
	IntentSearch      Intent = "search"
	IntentFindText    Intent = "find_text"
	IntentFindElement Intent = "find_element"
	IntentRead        Intent = "read"
	IntentExtract     Intent = "extract"
	IntentSummarize   Intent = "summarize"
	IntentTranslate   Intent = "translate"
	IntentCopy        Intent = "copy"
	IntentShare       Intent = "share"
	IntentScreenshot  Intent = "screenshot"
	IntentHelp        Intent = "help"
	IntentStop        Intent = "stop"
	IntentUnknown     Intent = "unknown"
)

// RequiresTarget reports whether the intent needs at least one target element
// on the page to be executable. Used by the resolver's confidence penalty.
func (i Intent) RequiresTarget() bool {
	switch i {
	case IntentClick, IntentFillForm, IntentLongPress:
		return true
	}
	return false
}

// IsValid reports whether i is one of the closed vocabulary values.
func (i Intent) IsValid() bool {
	switch i {
	case IntentNavigate, IntentGoBack, IntentGoForward, IntentRefresh,
		IntentGoHome, IntentClick, IntentScroll, IntentSwipe, IntentLongPress,
		IntentFillForm, IntentSubmitForm, IntentClearForm, IntentSearch,
		IntentFindText, IntentFindElement, IntentRead, IntentExtract,
		IntentSummarize, IntentTranslate, IntentCopy, IntentShare,
		IntentScreenshot, IntentHelp, IntentStop, IntentUnknown:
		return true
	}
	return false
}

// Well-known parameter keys populated by the entity extractor.
const (
	ParamField     = "field"     // form field name for fill commands
	ParamValue     = "value"     // text to insert for fill commands
	ParamURL       = "url"       // destination for navigate commands
	ParamQuery     = "query"     // search term for search commands
	ParamDirection = "direction" // scroll/swipe direction
	ParamLanguage  = "language"  // ISO 639-1 code for translate commands
)

// VoiceCommand is a parsed instruction: one transcript classified into an
// intent with its extracted arguments and an initial confidence score.
//
// A VoiceCommand is immutable once created. The resolver produces a new
// result with a possibly different intent; it never mutates the original.
type VoiceCommand struct {
	// Intent is the classified symbolic action.
	Intent Intent `json:"intent"`

	// Entities are the extracted string arguments in extraction order.
	// Order matters: the first entity is the primary target for form filling.
	Entities []string `json:"entities,omitempty"`

	// OriginalText is the untouched transcript.
	OriginalText string `json:"original_text"`

	// Confidence estimates how certain the classification is, in [0, 1].
	Confidence float64 `json:"confidence"`

	// Parameters holds named sub-values (see the Param* keys).
	Parameters map[string]string `json:"parameters,omitempty"`
}
