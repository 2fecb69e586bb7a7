package command

import (
	"testing"

	"github.com/arvindram27/memex-agent/pkg/page"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Click The Button", "click the button"},
		{"punctuation stripped", "fill email with test@example.com!", "fill email with testexamplecom"},
		{"whitespace collapsed", "  scroll \t down \n now ", "scroll down now"},
		{"empty", "", ""},
		{"only punctuation", "?!...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyIntent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want Intent
	}{
		{"click the blue button", IntentClick},
		{"go to google.com", IntentNavigate},
		{"go back", IntentGoBack},
		{"refresh the page", IntentRefresh},
		{"scroll down", IntentScroll},
		{"fill email with foo", IntentFillForm},
		{"submit the form", IntentSubmitForm},
		{"search", IntentSearch},
		{"search for running shoes", IntentSearch},
		{"translate this to spanish", IntentTranslate},
		{"take a screenshot", IntentScreenshot},
		{"stop", IntentStop},
		{"asdkjasd nonsense", IntentUnknown},
		{"", IntentUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			if got := classifyIntent(Normalize(tt.text)); got != tt.want {
				t.Errorf("classifyIntent(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestClassifyIntent_TieBreak pins the first-declared-wins rule: "go to
// google" matches one NAVIGATE trigger and one SEARCH trigger, and NAVIGATE
// is declared first in the trigger table.
func TestClassifyIntent_TieBreak(t *testing.T) {
	t.Parallel()

	got := classifyIntent(Normalize("go to google"))
	if got != IntentNavigate {
		t.Errorf("tie-break: got %v, want %v (first-declared intent must win)", got, IntentNavigate)
	}
}

func TestClassifyIntent_SpecialCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want Intent
	}{
		{"sign in to my account", IntentFillForm},
		{"how much is this", IntentExtract},
		{"what does it say here", IntentRead},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			if got := classifyIntent(Normalize(tt.text)); got != tt.want {
				t.Errorf("classifyIntent(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// TestClassify_ClickBlueButton covers "click the blue button" with no page context.
func TestClassify_ClickBlueButton(t *testing.T) {
	t.Parallel()

	cmd := NewClassifier().Classify("click the blue button", nil)

	if cmd.Intent != IntentClick {
		t.Fatalf("intent = %v, want %v", cmd.Intent, IntentClick)
	}
	if len(cmd.Entities) != 1 || cmd.Entities[0] != "blue button" {
		t.Fatalf("entities = %v, want [blue button]", cmd.Entities)
	}
	// 0.5 (known intent) + 0.1 (1 entity) + 0.2 (4 words) = 0.8
	if diff := cmd.Confidence - 0.8; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("confidence = %v, want 0.8", cmd.Confidence)
	}
}

// TestClassify_FillEmailWithValue covers "fill email with test@example.com".
func TestClassify_FillEmailWithValue(t *testing.T) {
	t.Parallel()

	cmd := NewClassifier().Classify("fill email with test@example.com", nil)

	if cmd.Intent != IntentFillForm {
		t.Fatalf("intent = %v, want %v", cmd.Intent, IntentFillForm)
	}
	if cmd.Parameters[ParamField] != "email" {
		t.Errorf("field param = %q, want %q", cmd.Parameters[ParamField], "email")
	}
	if cmd.Parameters[ParamValue] != "test@example.com" {
		t.Errorf("value param = %q, want %q", cmd.Parameters[ParamValue], "test@example.com")
	}
	found := false
	for _, e := range cmd.Entities {
		if e == "email" {
			found = true
		}
	}
	if !found {
		t.Errorf("entities = %v, want to include %q", cmd.Entities, "email")
	}
}

// TestClassify_GibberishIsUnknown covers gibberish: UNKNOWN, confidence 0, no entities.
func TestClassify_GibberishIsUnknown(t *testing.T) {
	t.Parallel()

	cmd := NewClassifier().Classify("asdkjasd nonsense", nil)

	if cmd.Intent != IntentUnknown {
		t.Fatalf("intent = %v, want %v", cmd.Intent, IntentUnknown)
	}
	if cmd.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", cmd.Confidence)
	}
	if len(cmd.Entities) != 0 {
		t.Errorf("entities = %v, want none", cmd.Entities)
	}
}

// TestClassify_Deterministic verifies repeated calls yield identical results.
func TestClassify_Deterministic(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	desc := &page.Description{
		Clickable: []page.Element{
			{Kind: page.KindButton, Text: "Sign in", Selector: "#signin"},
		},
	}

	first := c.Classify("click sign in", desc)
	for i := 0; i < 10; i++ {
		got := c.Classify("click sign in", desc)
		if got.Intent != first.Intent || got.Confidence != first.Confidence ||
			len(got.Entities) != len(first.Entities) {
			t.Fatalf("call %d diverged: %+v vs %+v", i, got, first)
		}
	}
}

func TestClassify_PageElementEntity(t *testing.T) {
	t.Parallel()

	desc := &page.Description{
		Clickable: []page.Element{
			{Kind: page.KindButton, Text: "Add to cart", Selector: ".add-cart"},
			{Kind: page.KindLink, Text: "Checkout", Selector: "#checkout"},
		},
	}

	cmd := NewClassifier().Classify("click add to cart", desc)
	if cmd.Intent != IntentClick {
		t.Fatalf("intent = %v, want %v", cmd.Intent, IntentClick)
	}
	found := false
	for _, e := range cmd.Entities {
		if e == "Add to cart" {
			found = true
		}
	}
	if !found {
		t.Errorf("entities = %v, want to include the matched element label", cmd.Entities)
	}
}

// TestTriggerTableIsOrderedAndClosed enumerates the table: every intent in it
// must be valid, no intent may appear twice, and UNKNOWN must not be present.
func TestTriggerTableIsOrderedAndClosed(t *testing.T) {
	t.Parallel()

	seen := make(map[Intent]bool)
	for _, row := range triggerTable {
		if !row.Intent.IsValid() || row.Intent == IntentUnknown {
			t.Errorf("invalid trigger-table intent %q", row.Intent)
		}
		if seen[row.Intent] {
			t.Errorf("intent %q declared twice", row.Intent)
		}
		seen[row.Intent] = true
		if len(row.Triggers) == 0 {
			t.Errorf("intent %q has no trigger phrases", row.Intent)
		}
	}
}
