package command

import "strings"

// Scoring constants. The values are deliberately simple and monotonic: more
// extracted structure and shorter commands increase confidence. Retuning is
// allowed as long as monotonicity holds — more entities must never lower the
// score, and the result is always clamped to [0, 1].
const (
	// scoreKnownIntent is granted when the intent is anything but unknown.
	scoreKnownIntent = 0.5

	// scorePerEntity is added once per extracted entity.
	scorePerEntity = 0.1

	// scoreBrevityBonus is added for commands of at most brevityWordLimit
	// words — short commands are less ambiguous.
	scoreBrevityBonus = 0.2

	brevityWordLimit = 5
)

// Score computes the initial confidence for a classified command from
// structural cues alone: intent recognition, entity count, and brevity of the
// normalized text.
func Score(intent Intent, entityCount int, normalized string) float64 {
	// Fully unrecognised input scores exactly zero — the brevity bonus must
	// not make gibberish look plausible.
	if intent == IntentUnknown && entityCount == 0 {
		return 0
	}
	score := 0.0
	if intent != IntentUnknown {
		score = scoreKnownIntent
	}
	score += scorePerEntity * float64(entityCount)
	if wc := len(strings.Fields(normalized)); wc > 0 && wc <= brevityWordLimit {
		score += scoreBrevityBonus
	}
	return Clamp(score)
}

// Clamp bounds v to [0, 1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
