// Package sounds maps semantic human-sound categories to generation
// prompts and infers implicit cues from scene context and dialogue markup.
package sounds

import (
	"sort"
	"strings"
)

// markerLexicon normalizes dialogue-embedded markers ([laughs], [sighs]...)
// to catalog categories. Matching is substring-based after normalization.
var markerLexicon = map[string]string{
	"laughs": "laughter", "laugh": "laughter", "chuckles": "laughter", "giggles": "laughter",
	"sighs": "sigh", "sigh": "sigh",
	"groans": "groan", "groan": "groan",
	"gasps": "gasp", "gasp": "gasp",
	"coughs": "cough", "cough": "cough",
	"sneezes": "sneeze", "sneeze": "sneeze",
	"cries": "cry", "cry": "cry", "sobs": "cry",
	"screams": "scream", "scream": "scream",
	"yawns": "yawn", "yawn": "yawn",
	"hiccups": "hiccup", "hiccup": "hiccup",
	"burps": "burp", "burp": "burp",
	"grunts": "grunt", "grunt": "grunt",
	"moans": "moan", "moan": "moan",
	"breathes heavily": "breathing", "pants": "breathing", "wheezes": "breathing",
}

// ParseMarker maps a dialogue annotation to a catalog category. The marker
// is lower-cased and stripped of brackets and punctuation first.
// Unrecognized markers return ok=false and are dropped by callers; an
// unknown annotation must never block dialogue delivery.
func ParseMarker(text string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.Trim(norm, "[]().,!?")

	if norm == "" {
		return "", false
	}
	// Longest keys first so "breathes heavily" wins over a bare substring.
	keys := make([]string, 0, len(markerLexicon))
	for k := range markerLexicon {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	for _, k := range keys {
		if strings.Contains(norm, k) {
			return markerLexicon[k], true
		}
	}
	return "", false
}

// Category resolves an explicit cue name to a catalog category. Exact
// catalog names pass through; free-text phrases go through the marker
// lexicon.
func Category(name string) (string, bool) {
	norm := strings.ToLower(strings.TrimSpace(name))
	if _, ok := Catalog[norm]; ok {
		return norm, true
	}
	return ParseMarker(name)
}

var emotionRules = map[string][]string{
	"happy": {"laughter"}, "joy": {"laughter"}, "excited": {"laughter"},
	"sad": {"sigh", "cry"}, "depressed": {"sigh", "cry"},
	"angry": {"groan", "grunt", "breathing"}, "frustrated": {"groan", "grunt", "breathing"},
	"scared": {"gasp", "scream", "breathing"}, "fearful": {"gasp", "scream", "breathing"},
	"tired": {"yawn", "sigh", "groan"}, "exhausted": {"yawn", "sigh", "groan"},
}

var contextRules = []struct {
	keywords   []string
	categories []string
}{
	{[]string{"eating", "dinner", "restaurant"}, []string{"eating", "drinking"}},
	{[]string{"running", "chase", "exercise"}, []string{"breathing", "effort"}},
	{[]string{"sleeping", "bedroom", "night"}, []string{"yawn", "sleep"}},
	{[]string{"surprise", "shock"}, []string{"gasp", "oh", "ah"}},
	{[]string{"thinking", "contemplating"}, []string{"hmm", "ah"}},
}

// Contextual suggests human-sound categories implied by a scene
// description and its dominant emotion. The result is the deduplicated
// union of every matching rule, in deterministic order.
func Contextual(description, emotion string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(cats []string) {
		for _, c := range cats {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}

	if emotion != "" {
		if cats, ok := emotionRules[strings.ToLower(emotion)]; ok {
			add(cats)
		}
	}

	lower := strings.ToLower(description)
	for _, rule := range contextRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				add(rule.categories)
				break
			}
		}
	}

	return out
}

// Prompt builds the generation prompt for one cue: a catalog variant
// matched to the emotion where possible, plus intensity and voice hints.
func Prompt(h HumanSound) string {
	variant := h.Category
	if info, ok := Catalog[h.Category]; ok && len(info.Variants) > 0 {
		variant = info.Variants[0]
		if h.Emotion != "" {
			for _, v := range info.Variants {
				if strings.Contains(strings.ToLower(v), strings.ToLower(h.Emotion)) {
					variant = v
					break
				}
			}
		}
	}

	parts := []string{"human " + variant}
	if h.Emotion != "" {
		parts = append(parts, h.Emotion+" emotion")
	}
	if h.Intensity > 0.7 {
		parts = append(parts, "intense")
	} else if h.Intensity < 0.3 {
		parts = append(parts, "subtle")
	}

	if h.Character != "" {
		lower := strings.ToLower(h.Character)
		switch {
		case strings.Contains(lower, "female"):
			parts = append(parts, "female voice")
		case strings.Contains(lower, "male"):
			parts = append(parts, "male voice")
		case strings.Contains(lower, "child"):
			parts = append(parts, "child voice")
		case strings.Contains(lower, "elderly"), strings.Contains(lower, "old"):
			parts = append(parts, "elderly voice")
		}
	}
	if h.Context != "" {
		parts = append(parts, "in "+h.Context)
	}
	parts = append(parts, "realistic", "natural", "authentic")

	return strings.Join(parts, ", ")
}
