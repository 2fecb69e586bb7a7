// Package page defines the structured page model shared by the memex-agent
// pipeline: the snapshot a Describer produces from a live browser page and
// the element/action vocabulary an Automator consumes.
//
// These types are the lingua franca between the browser boundary and the
// pure decision logic (classification, context building, resolution). The
// decision packages never touch a live page — they only ever see a
// [PageDescription] snapshot, which is rebuilt from scratch before every
// command and never mutated after construction.
package page

// MaxElementTextLen bounds the label text carried per element. Longer labels
// are truncated by the Describer so downstream substring matching stays cheap.
const MaxElementTextLen = 100

// MaxVisibleTextLen bounds the concatenated visible text of a snapshot.
const MaxVisibleTextLen = 2000

// ElementKind classifies a page element by its interactive role.
type ElementKind string

const (
	KindText       ElementKind = "text"
	KindButton     ElementKind = "button"
	KindLink       ElementKind = "link"
	KindInput      ElementKind = "input"
	KindForm       ElementKind = "form"
	KindImage      ElementKind = "image"
	KindHeading    ElementKind = "heading"
	KindNavigation ElementKind = "navigation"
	KindUnknown    ElementKind = "unknown"
)

// Rect is an element bounding box in page coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Element is one interactive or textual unit on the page.
//
// Text and Attributes together must carry enough information to re-derive a
// plausible targeting strategy; Bounds may be nil for off-screen or non-visual
// descriptions.
type Element struct {
	// Kind is the element's role classification.
	Kind ElementKind `json:"kind"`

	// Text is the element's display/label text, truncated to
	// [MaxElementTextLen] characters.
	Text string `json:"text"`

	// Bounds is the element's bounding box, when known.
	Bounds *Rect `json:"bounds,omitempty"`

	// Attributes maps attribute names to values (href, id, class, type,
	// name, placeholder, ...). Keys are open-ended.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Selector is an opaque locator string the Automator can use to re-find
	// this element later. May be empty when no stable selector exists.
	Selector string `json:"selector,omitempty"`
}

// Attr returns the named attribute value, or "" when absent.
func (e Element) Attr(name string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[name]
}

// TextBlock is an OCR-recognized text region, supplied only when a screen
// capture was available alongside the DOM snapshot.
type TextBlock struct {
	Text   string `json:"text"`
	Bounds Rect   `json:"bounds"`
}

// StructuralFacts captures coarse page structure used by page-type inference.
type StructuralFacts struct {
	// Headings lists the page's heading texts in document order.
	Headings []string `json:"headings,omitempty"`

	// FormCount is the number of form elements on the page.
	FormCount int `json:"form_count"`

	// ImageCount is the number of rendered images.
	ImageCount int `json:"image_count"`

	// HasNavigation reports whether a nav landmark was found.
	HasNavigation bool `json:"has_navigation"`
}

// Description is an atomic snapshot of the current page. It is rebuilt on
// demand before each command is resolved and before suggestions are computed,
// never persisted, and fully replaced on each refresh.
type Description struct {
	// VisibleText is the concatenation of visible text nodes, capped at
	// [MaxVisibleTextLen] characters.
	VisibleText string `json:"visible_text"`

	// Clickable lists interactive elements (buttons, links) in document order.
	Clickable []Element `json:"clickable,omitempty"`

	// FormFields lists input/select/textarea elements in document order.
	FormFields []Element `json:"form_fields,omitempty"`

	// URL is the page's current address.
	URL string `json:"url"`

	// Title is the document title.
	Title string `json:"title"`

	// Structure holds coarse structural facts.
	Structure StructuralFacts `json:"structure"`

	// OCRBlocks holds screen-capture text regions, when available.
	OCRBlocks []TextBlock `json:"ocr_blocks,omitempty"`
}

// Empty returns an empty-but-valid snapshot carrying whatever URL and title
// are known. Describers return this instead of failing so the rest of the
// pipeline can tolerate a maximally empty description.
func Empty(url, title string) *Description {
	return &Description{URL: url, Title: title}
}

// TruncateText caps s at max characters. Truncation is by byte on purpose —
// labels are matched as normalized substrings, not displayed.
func TruncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
