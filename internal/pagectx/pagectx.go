// Package pagectx derives a semantic summary of a page snapshot: a page-type
// classification, a coarse guess at what the user is trying to do, and a few
// heuristically extracted keyword groups.
//
// Classification is a deterministic decision table evaluated in fixed
// priority order — first match wins. The builder is a pure function of the
// snapshot plus a bounded window of recent interaction history; it performs
// no network calls and no I/O.
package pagectx

import (
	"net/url"
	"sort"
	"strings"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/internal/history"
	"github.com/arvindram27/memex-agent/pkg/page"
)

// PageType classifies a page into one of a fixed set of categories.
type PageType string

const (
	TypeSearchEngine PageType = "search_engine"
	TypeECommerce    PageType = "e_commerce"
	TypeSocialMedia  PageType = "social_media"
	TypeNewsArticle  PageType = "news_article"
	TypeFormPage     PageType = "form_page"
	TypeLoginPage    PageType = "login_page"
	TypeHomepage     PageType = "homepage"
	TypeUnknown      PageType = "unknown"
)

// UserIntent is a coarse guess at the user's current goal.
type UserIntent string

const (
	GoalBrowse   UserIntent = "browse"
	GoalShop     UserIntent = "shop"
	GoalSearch   UserIntent = "search"
	GoalRead     UserIntent = "read"
	GoalInteract UserIntent = "interact"
	GoalNavigate UserIntent = "navigate"
)

// Semantic group names populated by the builder.
const (
	GroupNavigation = "navigation"
	GroupActions    = "actions"
	GroupKeywords   = "keywords"
	GroupForms      = "forms"
)

// Context is the derived semantic summary of a page snapshot.
type Context struct {
	// PageType is the decision-table classification.
	PageType PageType `json:"page_type"`

	// UserIntentGuess is the inferred coarse goal.
	UserIntentGuess UserIntent `json:"user_intent_guess"`

	// SemanticGroups maps category names to extracted strings.
	SemanticGroups map[string][]string `json:"semantic_groups,omitempty"`
}

// Heuristic tables for the decision rows. Data, not code, so tests can
// enumerate coverage.
var (
	searchEnginePaths = []string{
		"google.com/search", "bing.com/search", "duckduckgo.com",
		"search.yahoo.com", "/search?",
	}
	commerceMarkers = []string{"add to cart", "buy now", "$", "price"}
	shoppingHosts   = []string{"amazon.", "ebay.", "etsy.", "walmart.", "aliexpress."}
	socialHosts     = []string{
		"facebook.com", "twitter.com", "x.com", "instagram.com",
		"tiktok.com", "reddit.com", "linkedin.com",
	}
	newsMarkers = []string{"published", "author"}
)

// historyWindow is how many recent interactions the goal guess inspects.
const historyWindow = 5

// maxGroupSize caps each semantic group.
const maxGroupSize = 10

// Builder derives [Context] values. The attached history log is read-only
// here; a nil log disables the history-based goal fallback.
type Builder struct {
	log *history.Log
}

// NewBuilder creates a Builder reading goal hints from log. log may be nil.
func NewBuilder(log *history.Log) *Builder {
	return &Builder{log: log}
}

// Build classifies desc and infers the user goal. It is total: a nil or
// empty snapshot yields TypeUnknown with the browse goal.
func (b *Builder) Build(desc *page.Description) Context {
	if desc == nil {
		return Context{PageType: TypeUnknown, UserIntentGuess: GoalBrowse}
	}

	pt := classifyPage(desc)
	return Context{
		PageType:        pt,
		UserIntentGuess: b.guessGoal(pt),
		SemanticGroups:  semanticGroups(desc),
	}
}

// classifyPage evaluates the decision table in fixed priority order.
func classifyPage(desc *page.Description) PageType {
	lowerURL := strings.ToLower(desc.URL)
	lowerTitle := strings.ToLower(desc.Title)
	lowerText := strings.ToLower(desc.VisibleText)

	// 1. Search-engine result/search path.
	for _, p := range searchEnginePaths {
		if strings.Contains(lowerURL, p) {
			return TypeSearchEngine
		}
	}

	// 2. Commerce markers in text, or a known shopping host.
	for _, m := range commerceMarkers {
		if strings.Contains(lowerText, m) {
			return TypeECommerce
		}
	}
	for _, h := range shoppingHosts {
		if strings.Contains(lowerURL, h) {
			return TypeECommerce
		}
	}

	// 3. Social host.
	for _, h := range socialHosts {
		if strings.Contains(lowerURL, h) {
			return TypeSocialMedia
		}
	}

	// 4. Password field or login wording on a form field.
	for _, f := range desc.FormFields {
		if strings.EqualFold(f.Attr("type"), "password") {
			return TypeLoginPage
		}
		label := strings.ToLower(f.Text + " " + f.Attr("name") + " " + f.Attr("placeholder"))
		if strings.Contains(label, "password") || strings.Contains(label, "login") {
			return TypeLoginPage
		}
	}

	// 5. Enough fields to be a form page.
	if len(desc.FormFields) > 2 {
		return TypeFormPage
	}

	// 6. Article wording or heading-heavy structure.
	for _, m := range newsMarkers {
		if strings.Contains(lowerText, m) {
			return TypeNewsArticle
		}
	}
	if len(desc.Structure.Headings) > 3 {
		return TypeNewsArticle
	}

	// 7. Shallow path plus home wording or a root URL.
	if pathDepth(desc.URL) <= 3 && (strings.Contains(lowerTitle, "home") || isRootURL(desc.URL)) {
		return TypeHomepage
	}

	return TypeUnknown
}

// guessGoal maps unambiguous page types directly; for everything else it
// scans the recent history window, first qualifying pattern wins.
func (b *Builder) guessGoal(pt PageType) UserIntent {
	switch pt {
	case TypeSearchEngine:
		return GoalSearch
	case TypeECommerce:
		return GoalShop
	case TypeNewsArticle:
		return GoalRead
	case TypeFormPage, TypeLoginPage:
		return GoalInteract
	}

	if b.log == nil {
		return GoalBrowse
	}
	recent := b.log.Recent(historyWindow)
	for _, rule := range []struct {
		intent command.Intent
		goal   UserIntent
	}{
		{command.IntentSearch, GoalSearch},
		{command.IntentRead, GoalRead},
		{command.IntentFillForm, GoalInteract},
	} {
		for _, e := range recent {
			if e.Intent == rule.intent {
				return rule.goal
			}
		}
	}
	return GoalBrowse
}

// semanticGroups extracts navigation labels, action labels, form field names,
// and frequent visible-text keywords.
func semanticGroups(desc *page.Description) map[string][]string {
	groups := make(map[string][]string, 4)

	var nav, actions []string
	for _, el := range desc.Clickable {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}
		switch el.Kind {
		case page.KindLink, page.KindNavigation:
			nav = append(nav, text)
		case page.KindButton:
			actions = append(actions, text)
		}
	}

	var forms []string
	for _, f := range desc.FormFields {
		if name := f.Attr("name"); name != "" {
			forms = append(forms, name)
		} else if ph := f.Attr("placeholder"); ph != "" {
			forms = append(forms, ph)
		}
	}

	if len(nav) > 0 {
		groups[GroupNavigation] = capGroup(nav)
	}
	if len(actions) > 0 {
		groups[GroupActions] = capGroup(actions)
	}
	if len(forms) > 0 {
		groups[GroupForms] = capGroup(forms)
	}
	if kw := frequentKeywords(desc.VisibleText); len(kw) > 0 {
		groups[GroupKeywords] = kw
	}
	if len(groups) == 0 {
		return nil
	}
	return groups
}

// stopwords excluded from the keywords group.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
	"from": {}, "you": {}, "your": {}, "are": {}, "was": {}, "have": {},
	"not": {}, "but": {}, "all": {}, "can": {}, "will": {}, "our": {},
}

// frequentKeywords returns the most frequent non-stopword tokens of at least
// four characters, ties broken alphabetically for determinism.
func frequentKeywords(visibleText string) []string {
	counts := make(map[string]int)
	for _, tok := range strings.Fields(command.Normalize(visibleText)) {
		if len(tok) < 4 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		counts[tok]++
	}
	if len(counts) == 0 {
		return nil
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > maxGroupSize {
		words = words[:maxGroupSize]
	}
	return words
}

func capGroup(items []string) []string {
	if len(items) > maxGroupSize {
		return items[:maxGroupSize]
	}
	return items
}

// pathDepth counts non-empty path segments of rawURL. Unparseable URLs count
// as depth 0.
func pathDepth(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	depth := 0
	for _, seg := range strings.Split(u.Path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// isRootURL reports whether rawURL has an empty or "/" path and no query.
func isRootURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Path == "" || u.Path == "/") && u.RawQuery == ""
}
