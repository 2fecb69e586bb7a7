package page

import "context"

// Describer produces an atomic [Description] snapshot of the live page.
//
// Implementations must filter out elements that are not visually rendered
// (zero-size, display:none, offscreen-stacked) and cap VisibleText at
// [MaxVisibleTextLen]. On internal errors they should degrade to an
// empty-but-valid snapshot (see [Empty]) rather than failing the caller;
// a non-nil error is reserved for unrecoverable browser-session loss.
//
// Implementations must be safe for concurrent use.
type Describer interface {
	Describe(ctx context.Context) (*Description, error)
}

// ActionKind identifies the script an Automator runs against the page.
type ActionKind string

const (
	ActionClick    ActionKind = "click"
	ActionFill     ActionKind = "fill"
	ActionSubmit   ActionKind = "submit"
	ActionClear    ActionKind = "clear"
	ActionScroll   ActionKind = "scroll"
	ActionNavigate ActionKind = "navigate"
	ActionBack     ActionKind = "back"
	ActionForward  ActionKind = "forward"
	ActionReload   ActionKind = "reload"
	ActionExtract  ActionKind = "extract"
)

// Action describes what to do against the page. The core constructs this as
// a prediction of what the automator will find; Selector and Text are ranked
// advisory targeting hints, not authoritative locators — the automator may
// re-locate by its own strategy.
type Action struct {
	// Kind selects the script to run.
	Kind ActionKind `json:"kind"`

	// Selector is the advisory locator of the primary target element.
	Selector string `json:"selector,omitempty"`

	// Text is the target's label text, used as a fallback locator.
	Text string `json:"text,omitempty"`

	// Value is the text to type for fill actions.
	Value string `json:"value,omitempty"`

	// URL is the destination for navigate actions.
	URL string `json:"url,omitempty"`

	// DeltaX and DeltaY are scroll distances in pixels.
	DeltaX int `json:"delta_x,omitempty"`
	DeltaY int `json:"delta_y,omitempty"`
}

// Result reports the outcome of an executed action.
type Result struct {
	// Success reports whether the script completed and affected the page.
	Success bool `json:"success"`

	// Message is a human-readable description of what happened.
	Message string `json:"message,omitempty"`

	// Data carries extracted text for extract/read actions.
	Data string `json:"data,omitempty"`
}

// Automator executes an [Action] against the live page.
//
// Implementations must be safe for concurrent use with a Describer over the
// same page session; the agent serialises command handling so only one
// Execute is in flight at a time.
type Automator interface {
	Execute(ctx context.Context, action Action) (*Result, error)
}
