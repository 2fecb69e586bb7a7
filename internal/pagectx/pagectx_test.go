package pagectx

import (
	"context"
	"testing"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/history"
	"github.com/arvindram27/memex-agent/pkg/page"
)

func TestClassifyPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		desc *page.Description
		want PageType
	}{
		{
			"search engine by url",
			&page.Description{URL: "https://www.google.com/search?q=shoes"},
			TypeSearchEngine,
		},
		{
			"e-commerce by commerce marker",
			&page.Description{URL: "https://example.com/p/1", VisibleText: "Nice shoes. Add to cart today"},
			TypeECommerce,
		},
		{
			"e-commerce by host",
			&page.Description{URL: "https://www.amazon.com/dp/B000"},
			TypeECommerce,
		},
		{
			"social by host",
			&page.Description{URL: "https://www.reddit.com/r/golang"},
			TypeSocialMedia,
		},
		{
			"login by password type",
			&page.Description{
				URL: "https://example.com/account",
				FormFields: []page.Element{
					{Kind: page.KindInput, Attributes: map[string]string{"type": "password"}},
				},
			},
			TypeLoginPage,
		},
		{
			"login by label",
			&page.Description{
				URL: "https://example.com/account",
				FormFields: []page.Element{
					{Kind: page.KindInput, Attributes: map[string]string{"placeholder": "Login name"}},
				},
			},
			TypeLoginPage,
		},
		{
			"form page by field count",
			&page.Description{
				URL: "https://example.com/register",
				FormFields: []page.Element{
					{Kind: page.KindInput}, {Kind: page.KindInput}, {Kind: page.KindInput},
				},
			},
			TypeFormPage,
		},
		{
			"news by marker",
			&page.Description{URL: "https://example.com/2026/08/story", VisibleText: "Published yesterday by the desk"},
			TypeNewsArticle,
		},
		{
			"news by headings",
			&page.Description{
				URL:       "https://example.com/story",
				Structure: page.StructuralFacts{Headings: []string{"a", "b", "c", "d"}},
			},
			TypeNewsArticle,
		},
		{
			"homepage by root url",
			&page.Description{URL: "https://example.com/", Title: "Example"},
			TypeHomepage,
		},
		{
			"homepage by title",
			&page.Description{URL: "https://example.com/en/start", Title: "Example — Home"},
			TypeHomepage,
		},
		{
			"unknown",
			&page.Description{URL: "https://example.com/some/deep/path/here", Title: "Misc"},
			TypeUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyPage(tt.desc); got != tt.want {
				t.Errorf("classifyPage = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestClassifyPage_PriorityOrder: a password field on a shopping host must
// still classify as e-commerce because the commerce row is evaluated first.
func TestClassifyPage_PriorityOrder(t *testing.T) {
	t.Parallel()

	desc := &page.Description{
		URL: "https://www.amazon.com/checkout",
		FormFields: []page.Element{
			{Kind: page.KindInput, Attributes: map[string]string{"type": "password"}},
		},
	}
	if got := classifyPage(desc); got != TypeECommerce {
		t.Errorf("classifyPage = %v, want %v (decision table order)", got, TypeECommerce)
	}
}

func TestGuessGoal_DirectMappings(t *testing.T) {
	t.Parallel()

	b := NewBuilder(nil)
	tests := []struct {
		pt   PageType
		want UserIntent
	}{
		{TypeSearchEngine, GoalSearch},
		{TypeECommerce, GoalShop},
		{TypeNewsArticle, GoalRead},
		{TypeFormPage, GoalInteract},
		{TypeLoginPage, GoalInteract},
		{TypeUnknown, GoalBrowse},
		{TypeHomepage, GoalBrowse},
	}
	for _, tt := range tests {
		if got := b.guessGoal(tt.pt); got != tt.want {
			t.Errorf("guessGoal(%v) = %v, want %v", tt.pt, got, tt.want)
		}
	}
}

func TestGuessGoal_HistoryFallback(t *testing.T) {
	t.Parallel()

	log := history.New()
	ctx := context.Background()
	log.Record(ctx, "https://example.com", command.IntentClick, true, "")
	log.Record(ctx, "https://example.com", command.IntentRead, true, "")

	b := NewBuilder(log)
	if got := b.guessGoal(TypeUnknown); got != GoalRead {
		t.Errorf("guessGoal with read history = %v, want %v", got, GoalRead)
	}

	// A search in the window outranks read regardless of recency order.
	log.Record(ctx, "https://example.com", command.IntentSearch, true, "")
	if got := b.guessGoal(TypeUnknown); got != GoalSearch {
		t.Errorf("guessGoal with search history = %v, want %v", got, GoalSearch)
	}
}

func TestBuild_SemanticGroups(t *testing.T) {
	t.Parallel()

	desc := &page.Description{
		URL:         "https://example.com/contact",
		VisibleText: "contact contact contact support support billing",
		Clickable: []page.Element{
			{Kind: page.KindLink, Text: "About"},
			{Kind: page.KindButton, Text: "Send"},
		},
		FormFields: []page.Element{
			{Kind: page.KindInput, Attributes: map[string]string{"name": "email"}},
			{Kind: page.KindInput, Attributes: map[string]string{"placeholder": "Your message"}},
		},
	}

	got := NewBuilder(nil).Build(desc)

	if len(got.SemanticGroups[GroupNavigation]) != 1 || got.SemanticGroups[GroupNavigation][0] != "About" {
		t.Errorf("navigation group = %v", got.SemanticGroups[GroupNavigation])
	}
	if len(got.SemanticGroups[GroupActions]) != 1 || got.SemanticGroups[GroupActions][0] != "Send" {
		t.Errorf("actions group = %v", got.SemanticGroups[GroupActions])
	}
	forms := got.SemanticGroups[GroupForms]
	if len(forms) != 2 || forms[0] != "email" || forms[1] != "Your message" {
		t.Errorf("forms group = %v", forms)
	}
	kw := got.SemanticGroups[GroupKeywords]
	if len(kw) == 0 || kw[0] != "contact" {
		t.Errorf("keywords group = %v, want contact first", kw)
	}
}

func TestBuild_NilDescription(t *testing.T) {
	t.Parallel()

	got := NewBuilder(nil).Build(nil)
	if got.PageType != TypeUnknown || got.UserIntentGuess != GoalBrowse {
		t.Errorf("Build(nil) = %+v, want unknown/browse", got)
	}
}

// TestBuild_Deterministic: identical inputs yield identical contexts.
func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	desc := &page.Description{
		URL:         "https://www.google.com/search?q=go",
		VisibleText: "results results results about about",
	}
	b := NewBuilder(nil)
	first := b.Build(desc)
	for i := 0; i < 5; i++ {
		got := b.Build(desc)
		if got.PageType != first.PageType || got.UserIntentGuess != first.UserIntentGuess {
			t.Fatalf("call %d diverged: %+v vs %+v", i, got, first)
		}
		for k, v := range first.SemanticGroups {
			other := got.SemanticGroups[k]
			if len(other) != len(v) {
				t.Fatalf("group %s diverged: %v vs %v", k, other, v)
			}
			for idx := range v {
				if other[idx] != v[idx] {
					t.Fatalf("group %s diverged at %d: %v vs %v", k, idx, other, v)
				}
			}
		}
	}
}
