package resolve

import (
	"strings"

	"github.com/arvindram27/memex-agent/internal/command"
	"github.com/arvindram27/memex-agent/pkg/page"
)

// fieldTypeAliases maps spoken field words to input type attributes, letting
// "fill in my email" match an <input type="email"> with no visible label.
var fieldTypeAliases = map[string][]string{
	"email":    {"email"},
	"mail":     {"email"},
	"password": {"password"},
	"search":   {"search"},
	"phone":    {"tel"},
	"number":   {"number", "tel"},
	"date":     {"date"},
}

// matchTargets ranks page elements against the command's entities. Layers
// run in order of reliability — normalized text substring, attribute
// substring, type-aware field matching, phonetic fallback — and their
// results are unioned, de-duplicated by (text, selector), and capped at
// MaxTargets. A nil description or empty entity list yields no targets.
func (r *Resolver) matchTargets(intent command.Intent, entities []string, desc *page.Description) []page.Element {
	if desc == nil || len(entities) == 0 {
		return nil
	}
	candidates := candidateElements(intent, desc)
	if len(candidates) == 0 {
		return nil
	}

	var out []page.Element
	seen := make(map[[2]string]bool)
	add := func(el page.Element) bool {
		key := [2]string{el.Text, el.Selector}
		if seen[key] {
			return len(out) < r.tuning.MaxTargets
		}
		seen[key] = true
		out = append(out, el)
		return len(out) < r.tuning.MaxTargets
	}

	for _, raw := range entities {
		ent := command.Normalize(raw)
		if ent == "" {
			continue
		}

		// Text layer: entity and element label contain one another.
		matched := false
		for _, el := range candidates {
			label := command.Normalize(el.Text)
			if label == "" {
				continue
			}
			if strings.Contains(label, ent) || strings.Contains(ent, label) {
				matched = true
				if !add(el) {
					return out
				}
			}
		}

		// Attribute layer: entity appears in an id, name, placeholder or
		// aria-label value.
		for _, el := range candidates {
			if attrContains(el, ent) {
				matched = true
				if !add(el) {
					return out
				}
			}
		}

		// Field-type layer: form filling can address fields by input type.
		if intent == command.IntentFillForm {
			for _, el := range candidates {
				if fieldTypeMatch(el, ent) {
					matched = true
					if !add(el) {
						return out
					}
				}
			}
		}

		// Phonetic layer: only when nothing textual matched, so a misheard
		// "chekout" can still land on the Checkout button.
		if !matched {
			if el, ok := r.phoneticTarget(ent, candidates); ok {
				if !add(el) {
					return out
				}
			}
		}
	}
	return out
}

// candidateElements restricts the search space by intent: clicks only ever
// land on clickable elements, form fills on form fields, everything else
// searches both lists.
func candidateElements(intent command.Intent, desc *page.Description) []page.Element {
	switch intent {
	case command.IntentClick, command.IntentLongPress:
		return desc.Clickable
	case command.IntentFillForm, command.IntentClearForm:
		return desc.FormFields
	default:
		merged := make([]page.Element, 0, len(desc.Clickable)+len(desc.FormFields))
		merged = append(merged, desc.Clickable...)
		merged = append(merged, desc.FormFields...)
		return merged
	}
}

func attrContains(el page.Element, ent string) bool {
	for _, attr := range []string{"id", "name", "placeholder", "aria-label", "title", "alt"} {
		if v := el.Attr(attr); v != "" && strings.Contains(strings.ToLower(v), ent) {
			return true
		}
	}
	return false
}

func fieldTypeMatch(el page.Element, ent string) bool {
	typ := strings.ToLower(el.Attr("type"))
	if typ == "" {
		return false
	}
	for word, types := range fieldTypeAliases {
		if !strings.Contains(ent, word) {
			continue
		}
		for _, t := range types {
			if typ == t {
				return true
			}
		}
	}
	return false
}

// phoneticTarget finds the candidate whose label sounds most like the
// entity, using the same matcher that corrects transcripts.
func (r *Resolver) phoneticTarget(ent string, candidates []page.Element) (page.Element, bool) {
	labels := make([]string, 0, len(candidates))
	byLabel := make(map[string]page.Element, len(candidates))
	for _, el := range candidates {
		label := strings.TrimSpace(el.Text)
		if label == "" {
			continue
		}
		if _, dup := byLabel[label]; !dup {
			byLabel[label] = el
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return page.Element{}, false
	}
	best, _, ok := r.matcher.Match(ent, labels)
	if !ok {
		return page.Element{}, false
	}
	return byLabel[best], true
}
