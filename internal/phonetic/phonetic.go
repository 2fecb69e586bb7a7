// Package phonetic matches misheard words against a known vocabulary using
// Double Metaphone phonetic encoding combined with Jaro-Winkler string
// similarity.
//
// Speech recognition routinely garbles the short labels that matter most on
// web pages: "singin" for "sign in", "check out" for "checkout", a mangled
// button caption. The matcher resolves such words in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     each input token and each vocabulary label; any code overlap makes the
//     label a phonetic candidate.
//  2. Jaro-Winkler ranking: phonetic candidates are ranked by string
//     similarity and accepted above the phonetic threshold. When no phonetic
//     candidate exists, a pure similarity pass applies a stricter fuzzy
//     threshold.
//
// Multi-word labels are supported: full-string, concatenated, and best
// pairwise token comparisons all contribute to the ranking score.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched label to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) { m.phoneticThreshold = threshold }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic candidate is found. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) { m.fuzzyThreshold = threshold }
}

// Matcher resolves words to vocabulary labels by pronunciation similarity.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a Matcher configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match attempts to find the label from vocabulary most phonetically similar
// to word. word may be a single token or a space-separated phrase.
//
// When matched is false, corrected equals word unchanged and confidence is 0.
func (m *Matcher) Match(word string, vocabulary []string) (corrected string, confidence float64, matched bool) {
	if len(vocabulary) == 0 || strings.TrimSpace(word) == "" {
		return word, 0, false
	}

	wordLower := strings.ToLower(strings.TrimSpace(word))
	wordTokens := strings.Fields(wordLower)
	inputCodes := codesForTokens(wordTokens)

	type candidate struct {
		label    string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, label := range vocabulary {
		labelLower := strings.ToLower(strings.TrimSpace(label))
		if labelLower == "" {
			continue
		}
		if labelLower == wordLower {
			// Exact (case-insensitive) hits short-circuit the ranking.
			return label, 1, true
		}
		labelTokens := strings.Fields(labelLower)

		phoneticMatch := codesOverlap(inputCodes, codesForTokens(labelTokens))
		jwScore := bestJWScore(wordTokens, labelTokens, wordLower, labelLower)

		if phoneticMatch {
			if jwScore >= m.phoneticThreshold {
				if !best.phonetic || jwScore > best.score {
					best = candidate{label: label, score: jwScore, phonetic: true}
				}
			}
		} else if !best.phonetic {
			if jwScore >= m.fuzzyThreshold && jwScore > best.score {
				best = candidate{label: label, score: jwScore, phonetic: false}
			}
		}
	}

	if best.label != "" {
		return best.label, best.score, true
	}
	return word, 0, false
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore computes the highest Jaro-Winkler similarity between the input
// and the label across full-string, concatenated, and best-pairwise-token
// comparisons.
func bestJWScore(inputTokens, labelTokens []string, inputFull, labelFull string) float64 {
	score := matchr.JaroWinkler(inputFull, labelFull, false)

	if len(inputTokens) > 1 || len(labelTokens) > 1 {
		concatIn := strings.Join(inputTokens, "")
		concatLabel := strings.Join(labelTokens, "")
		if s := matchr.JaroWinkler(concatIn, concatLabel, false); s > score {
			score = s
		}
	}

	for _, it := range inputTokens {
		for _, lt := range labelTokens {
			if s := matchr.JaroWinkler(it, lt, false); s > score {
				score = s
			}
		}
	}
	return score
}
