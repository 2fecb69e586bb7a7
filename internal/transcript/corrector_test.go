package transcript

import (
	"strings"
	"testing"

	"github.com/arvindram27/memex-agent/pkg/page"
)

func signInPage() *page.Description {
	return &page.Description{
		Clickable: []page.Element{
			{Kind: page.KindButton, Text: "Checkout", Selector: "#co"},
		},
		FormFields: []page.Element{
			{Kind: page.KindInput, Attributes: map[string]string{"name": "password"}},
		},
	}
}

func TestCorrect_InVocabularyUnchanged(t *testing.T) {
	t.Parallel()

	c := NewCorrector(nil)
	got, corrections := c.Correct("click checkout", signInPage())
	if got != "click checkout" {
		t.Errorf("Correct = %q, want input unchanged", got)
	}
	if len(corrections) != 0 {
		t.Errorf("corrections = %v, want none", corrections)
	}
}

func TestCorrect_MishearReplaced(t *testing.T) {
	t.Parallel()

	c := NewCorrector(nil)
	got, corrections := c.Correct("tap chekout now", signInPage())
	if !strings.Contains(got, "Checkout") {
		t.Errorf("Correct = %q, want %q substituted", got, "Checkout")
	}
	if len(corrections) != 1 {
		t.Fatalf("corrections = %v, want exactly one", corrections)
	}
	if corrections[0].Original != "chekout" || corrections[0].Confidence <= 0 {
		t.Errorf("correction = %+v", corrections[0])
	}
}

func TestCorrect_EmptyText(t *testing.T) {
	t.Parallel()

	c := NewCorrector(nil)
	got, corrections := c.Correct("", signInPage())
	if got != "" || corrections != nil {
		t.Errorf("Correct(\"\") = (%q, %v), want empty passthrough", got, corrections)
	}
}

func TestCorrect_NilDescriptionUsesCommandVocabulary(t *testing.T) {
	t.Parallel()

	c := NewCorrector(nil)
	got, corrections := c.Correct("skroll down", nil)
	if !strings.Contains(got, "scroll") {
		t.Errorf("Correct = %q, want %q substituted", got, "scroll")
	}
	if len(corrections) != 1 {
		t.Errorf("corrections = %v, want one", corrections)
	}
}

func TestCorrect_CommonWordsNeverTouched(t *testing.T) {
	t.Parallel()

	c := NewCorrector(nil)
	got, corrections := c.Correct("tap the button on this page", signInPage())
	if got != "tap the button on this page" {
		t.Errorf("Correct = %q, want input unchanged", got)
	}
	if len(corrections) != 0 {
		t.Errorf("corrections = %v, want none", corrections)
	}
}
