package suggest

import (
	"strings"
	"testing"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/pagectx"
	"github.com/arvindram27/memex-agent/pkg/page"
)

func TestSuggest_EmptyFormFields(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	desc := page.Empty("https://example.com/signup", "Sign up")
	desc.FormFields = []page.Element{
		{Kind: page.KindInput, Selector: "#name", Attributes: map[string]string{"type": "text"}},
		{Kind: page.KindInput, Selector: "#email", Attributes: map[string]string{"type": "email"}},
		{Kind: page.KindInput, Selector: "#password", Attributes: map[string]string{"type": "password"}},
	}

	got := e.Suggest(pagectx.Context{PageType: pagectx.TypeFormPage}, desc)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	a := got[0]
	if a.Intent != command.IntentFillForm {
		t.Errorf("Intent = %s, want %s", a.Intent, command.IntentFillForm)
	}
	if a.Confidence != fillFormConfidence {
		t.Errorf("Confidence = %v, want %v", a.Confidence, fillFormConfidence)
	}
	if len(a.Elements) != 3 {
		t.Errorf("Elements = %d, want all 3 empty fields", len(a.Elements))
	}
}

func TestSuggest_FilledFieldsSkipped(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	desc := page.Empty("https://example.com/signup", "Sign up")
	desc.FormFields = []page.Element{
		{Kind: page.KindInput, Selector: "#name", Attributes: map[string]string{"value": "Ada"}},
		{Kind: page.KindInput, Selector: "#email", Attributes: map[string]string{"type": "email"}},
	}

	got := e.Suggest(pagectx.Context{PageType: pagectx.TypeLoginPage}, desc)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	if len(got[0].Elements) != 1 || got[0].Elements[0].Selector != "#email" {
		t.Errorf("Elements = %+v, want only the empty email field", got[0].Elements)
	}
}

func TestSuggest_SearchEngineFirstResult(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	desc := page.Empty("https://search.example/?q=go", "go - Search")
	desc.Clickable = []page.Element{
		{Kind: page.KindButton, Text: "Settings", Selector: "#settings"},
		{Kind: page.KindLink, Text: "The Go Programming Language", Selector: "#r1"},
		{Kind: page.KindLink, Text: "Go (game)", Selector: "#r2"},
	}

	got := e.Suggest(pagectx.Context{PageType: pagectx.TypeSearchEngine}, desc)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	a := got[0]
	if a.Intent != command.IntentClick || a.Confidence != searchResultConfidence {
		t.Errorf("got intent %s confidence %v, want %s at %v",
			a.Intent, a.Confidence, command.IntentClick, searchResultConfidence)
	}
	if len(a.Elements) != 1 || a.Elements[0].Selector != "#r1" {
		t.Errorf("Elements = %+v, want only the first link", a.Elements)
	}
}

func TestSuggest_CommercePage(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	desc := page.Empty("https://shop.example/item/42", "Widget")
	desc.Clickable = []page.Element{
		{Kind: page.KindLink, Text: "Reviews", Selector: "#reviews"},
		{Kind: page.KindButton, Text: "Add to Cart", Selector: "#cart"},
	}

	got := e.Suggest(pagectx.Context{PageType: pagectx.TypeECommerce}, desc)
	if len(got) != 1 {
		t.Fatalf("got %d suggestions, want 1", len(got))
	}
	if got[0].Confidence != commerceConfidence || got[0].Elements[0].Selector != "#cart" {
		t.Errorf("got %+v, want the add-to-cart button at %v", got[0], commerceConfidence)
	}
}

func TestSuggest_LongTextAddsRead(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	desc := page.Empty("https://news.example/story", "Story")
	desc.VisibleText = strings.Repeat("word ", 200) // well past the threshold
	desc.Clickable = []page.Element{
		{Kind: page.KindButton, Text: "Buy now", Selector: "#buy"},
	}

	got := e.Suggest(pagectx.Context{PageType: pagectx.TypeECommerce}, desc)
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want commerce + read", len(got))
	}
	if got[1].Intent != command.IntentRead || got[1].Confidence != readConfidence {
		t.Errorf("second suggestion = %+v, want read at %v", got[1], readConfidence)
	}
}

func TestSuggest_ShortTextNoRead(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	desc := page.Empty("https://example.com", "Example")
	desc.VisibleText = "just a short page"

	if got := e.Suggest(pagectx.Context{PageType: pagectx.TypeUnknown}, desc); len(got) != 0 {
		t.Fatalf("got %+v, want none", got)
	}
}

func TestSuggest_NilDescription(t *testing.T) {
	t.Parallel()
	e := NewEngine()
	if got := e.Suggest(pagectx.Context{PageType: pagectx.TypeFormPage}, nil); got != nil {
		t.Fatalf("got %+v, want nil", got)
	}
}
