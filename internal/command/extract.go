package command

import (
	"regexp"
	"strings"

	"github.com/arvindram27/memex-agent/pkg/page"
)

// Pattern tables for entity extraction. Kept as data so tests can enumerate
// exact coverage.
var (
	// colorElementRe matches "<color> <element>" pairs such as "blue button".
	colorElementRe = regexp.MustCompile(`(?:red|blue|green|yellow|orange|purple|pink|black|white|gray|grey)\s+(?:button|link|text|icon|image)`)

	// directionKeywords are positional/directional words used by click,
	// find-element, and scroll commands.
	directionKeywords = []string{
		"up", "down", "left", "right", "top", "bottom",
		"first", "last", "next", "previous",
	}

	// fieldKeywords are form field-type words recognised by fill commands.
	// Multi-word entries precede their single-word substrings so the most
	// specific keyword is captured first.
	fieldKeywords = []string{
		"first name", "last name", "email", "password", "username",
		"phone", "address", "city", "zip", "search", "message", "name",
	}

	// fillValueRe captures the text following "with" or "as" in a fill
	// command. Applied to the raw transcript so values keep punctuation
	// (e-mail addresses, URLs).
	fillValueRe = regexp.MustCompile(`(?i)\b(?:with|as)\s+(.+)$`)

	// urlRe matches full URLs and bare host names in the raw transcript.
	urlRe = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?[a-z0-9-]+(?:\.[a-z0-9-]+)+(?:/\S*)?`)

	// searchQueryRe captures the search term following a search verb.
	searchQueryRe = regexp.MustCompile(`(?:search for|look for|google|search|find)\s+(.+)$`)

	// quotedRe matches double- or single-quoted substrings in the raw
	// transcript.
	quotedRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)

	// findTextRe captures the needle following a find/read/locate verb.
	findTextRe = regexp.MustCompile(`(?:find text|find|read|locate)\s+(.+)$`)

	// numberRe matches numeric tokens for the default strategy and scroll
	// amounts.
	numberRe = regexp.MustCompile(`\b\d+\b`)

	// capitalizedRe matches capitalised words in the raw transcript — a
	// naive proper-noun heuristic for the default strategy.
	capitalizedRe = regexp.MustCompile(`\b[A-Z][a-z]+\b`)

	// languageCodes maps spoken language names to ISO 639-1 codes for
	// translate commands.
	languageCodes = map[string]string{
		"english":    "en",
		"spanish":    "es",
		"french":     "fr",
		"german":     "de",
		"italian":    "it",
		"portuguese": "pt",
		"chinese":    "zh",
		"japanese":   "ja",
		"korean":     "ko",
		"hindi":      "hi",
		"arabic":     "ar",
		"russian":    "ru",
	}

	// languageOrder fixes the scan order over languageCodes so extraction is
	// deterministic.
	languageOrder = []string{
		"english", "spanish", "french", "german", "italian", "portuguese",
		"chinese", "japanese", "korean", "hindi", "arabic", "russian",
	}
)

// extractEntities dispatches on the classified intent to the matching
// extraction strategy. It never fails; unmatched intents fall through to the
// default strategy and the entity list may be empty.
//
// original is the raw transcript (used where punctuation matters: values,
// URLs, quoted text); normalized is the output of [Normalize] (used for
// keyword matching).
func extractEntities(intent Intent, original, normalized string, desc *page.Description) ([]string, map[string]string) {
	var entities []string
	params := make(map[string]string)

	switch intent {
	case IntentClick, IntentFindElement, IntentLongPress:
		entities = extractTargets(normalized, desc)

	case IntentFillForm:
		entities = extractFillForm(original, normalized, params)

	case IntentNavigate, IntentSearch:
		entities = extractNavigation(original, normalized, params)

	case IntentScroll, IntentSwipe:
		entities = extractScroll(normalized, params)

	case IntentFindText, IntentRead:
		entities = extractText(original, normalized)

	case IntentTranslate:
		entities = extractLanguage(normalized, params)

	default:
		entities = extractDefault(original, normalized)
	}

	if len(params) == 0 {
		params = nil
	}
	return dedupe(entities), params
}

// extractTargets pulls click/find targets: colour+element pairs, directional
// keywords, and any clickable element label that appears verbatim in the
// command.
func extractTargets(normalized string, desc *page.Description) []string {
	entities := colorElementRe.FindAllString(normalized, -1)

	for _, dir := range directionKeywords {
		if containsWord(normalized, dir) {
			entities = append(entities, dir)
		}
	}

	if desc != nil {
		for _, el := range desc.Clickable {
			label := Normalize(el.Text)
			if len(label) >= 3 && strings.Contains(normalized, label) {
				entities = append(entities, el.Text)
			}
		}
	}
	return entities
}

// extractFillForm pulls the field keyword and the value following "with"/"as".
func extractFillForm(original, normalized string, params map[string]string) []string {
	var entities []string
	for _, kw := range fieldKeywords {
		if strings.Contains(normalized, kw) {
			entities = append(entities, kw)
			if _, ok := params[ParamField]; !ok {
				params[ParamField] = kw
			}
		}
	}
	if m := fillValueRe.FindStringSubmatch(original); m != nil {
		params[ParamValue] = strings.TrimSpace(m[1])
	}
	return entities
}

// extractNavigation pulls URLs and search terms.
func extractNavigation(original, normalized string, params map[string]string) []string {
	var entities []string
	if url := urlRe.FindString(original); url != "" {
		entities = append(entities, url)
		params[ParamURL] = url
	}
	if m := searchQueryRe.FindStringSubmatch(normalized); m != nil {
		query := strings.TrimSpace(m[1])
		if query != "" {
			entities = append(entities, query)
			params[ParamQuery] = query
		}
	}
	return entities
}

// extractScroll pulls the direction and an optional numeric amount.
func extractScroll(normalized string, params map[string]string) []string {
	var entities []string
	for _, dir := range directionKeywords {
		if containsWord(normalized, dir) {
			entities = append(entities, dir)
			if _, ok := params[ParamDirection]; !ok {
				params[ParamDirection] = dir
			}
		}
	}
	if amount := numberRe.FindString(normalized); amount != "" {
		params["amount"] = amount
	}
	return entities
}

// extractText pulls quoted substrings and the trailing capture after a
// find/read/locate verb.
func extractText(original, normalized string) []string {
	var entities []string
	for _, m := range quotedRe.FindAllStringSubmatch(original, -1) {
		if m[1] != "" {
			entities = append(entities, m[1])
		} else if m[2] != "" {
			entities = append(entities, m[2])
		}
	}
	if m := findTextRe.FindStringSubmatch(normalized); m != nil {
		if needle := strings.TrimSpace(m[1]); needle != "" {
			entities = append(entities, needle)
		}
	}
	return entities
}

// extractLanguage scans for a known language name.
func extractLanguage(normalized string, params map[string]string) []string {
	var entities []string
	for _, name := range languageOrder {
		if strings.Contains(normalized, name) {
			entities = append(entities, name)
			if _, ok := params[ParamLanguage]; !ok {
				params[ParamLanguage] = languageCodes[name]
			}
		}
	}
	return entities
}

// extractDefault pulls numeric tokens and capitalised words as a last-resort
// heuristic for intents without a dedicated strategy.
func extractDefault(original, normalized string) []string {
	entities := numberRe.FindAllString(normalized, -1)
	entities = append(entities, capitalizedRe.FindAllString(original, -1)...)
	return entities
}

// containsWord reports whether normalized contains word as a whole token.
func containsWord(normalized, word string) bool {
	for _, tok := range strings.Fields(normalized) {
		if tok == word {
			return true
		}
	}
	return false
}

// dedupe removes duplicates preserving first-seen order. A nil slice stays
// nil.
func dedupe(entities []string) []string {
	if len(entities) < 2 {
		return entities
	}
	seen := make(map[string]struct{}, len(entities))
	out := entities[:0]
	for _, e := range entities {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
