package ai

import "strings"

// LanguageState holds the sticky Hinglish preference for one chat session.
// It is owned by the session controller and passed into every orchestrator
// call, so the preference never leaks across sessions. Sessions start with
// Hinglish preferred; Reset switches back to English until the user asks for
// Hinglish again.
type LanguageState struct {
	sticky bool
}

// NewLanguageState returns the default preference for a fresh session.
func NewLanguageState() *LanguageState {
	return &LanguageState{sticky: true}
}

// MarkRequested records an explicit "speak Hinglish" request; the preference
// holds for all subsequent turns until Reset.
func (s *LanguageState) MarkRequested() {
	s.sticky = true
}

// Preferred reports whether Hinglish is currently the sticky preference.
func (s *LanguageState) Preferred() bool {
	return s.sticky
}

// Reset clears the sticky preference back to English. Callable independently
// of any utterance, e.g. from a UI toggle.
func (s *LanguageState) Reset() {
	s.sticky = false
}

// Phrases that ask the assistant to switch into Hinglish.
var hinglishRequests = []string{
	"speak hinglish",
	"talk hinglish",
	"respond in hinglish",
	"reply in hinglish",
	"use hinglish",
	"baat karo",
	"hindi me baat",
	"hindi me bolo",
	"hinglish me baat",
	"hinglish me bolo",
}

// Common Hindi words written in Roman script.
var hindiWords = map[string]struct{}{
	"kya": {}, "kaise": {}, "aap": {}, "tum": {}, "main": {}, "hum": {},
	"yeh": {}, "woh": {}, "hai": {}, "hain": {}, "tha": {}, "the": {},
	"karo": {}, "karein": {}, "bolo": {}, "kahaan": {}, "kyun": {}, "kyon": {},
	"accha": {}, "theek": {}, "nahi": {}, "nahin": {}, "haan": {}, "ji": {},
	"kuch": {}, "mujhe": {}, "tumhe": {}, "unhe": {}, "hamein": {}, "aapko": {},
	"mera": {}, "tera": {}, "uska": {}, "hamara": {}, "aapka": {}, "kab": {},
	"abhi": {}, "baad": {}, "pehle": {}, "jaldi": {},
}

// requestsHinglish detects an explicit ask to switch languages via
// case-insensitive substring match.
func requestsHinglish(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range hinglishRequests {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// isHinglishMessage classifies a single utterance: at least 2 lexicon tokens
// that also make up 15% or more of all whitespace-separated tokens.
func isHinglishMessage(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}

	count := 0
	for _, w := range words {
		if _, ok := hindiWords[w]; ok {
			count++
		}
	}

	return count >= 2 && float64(count)/float64(len(words)) >= 0.15
}
