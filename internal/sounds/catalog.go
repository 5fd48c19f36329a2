package sounds

import "fmt"

// HumanSound is a non-verbal audio cue attached to a scene or a dialogue
// line. Intensity is clamped to [0,1] by Validate; Duration is seconds.
type HumanSound struct {
	Category  string
	Emotion   string
	Intensity float64
	Duration  float64
	Character string
	Context   string
}

// Validate checks the cue invariants before it is handed to a back-end.
func (h HumanSound) Validate() error {
	if _, ok := Catalog[h.Category]; !ok {
		return fmt.Errorf("sounds: unknown category %q", h.Category)
	}
	if h.Intensity < 0 || h.Intensity > 1 {
		return fmt.Errorf("sounds: intensity %.2f outside [0,1]", h.Intensity)
	}
	if h.Duration <= 0 {
		return fmt.Errorf("sounds: duration must be positive, got %.2f", h.Duration)
	}
	return nil
}

// CategoryInfo describes one catalog entry: the prompt variants a back-end
// can be asked for, the emotions the category associates with, and the
// natural duration range in seconds.
type CategoryInfo struct {
	Variants    []string
	Emotions    []string
	MinDuration float64
	MaxDuration float64
}

// Catalog is the fixed set of human sound categories. Variants are phrased
// as generation prompts for the sound-effect back-end.
var Catalog = map[string]CategoryInfo{
	"laughter": {
		Variants:    []string{"hearty laugh", "chuckle", "giggle", "snicker", "cackle", "belly laugh", "nervous laugh"},
		Emotions:    []string{"joy", "amusement", "nervousness", "sarcasm"},
		MinDuration: 0.5, MaxDuration: 3.0,
	},
	"sigh": {
		Variants:    []string{"deep sigh", "light sigh", "frustrated sigh", "content sigh", "relieved sigh"},
		Emotions:    []string{"frustration", "relief", "contentment", "exhaustion"},
		MinDuration: 1.0, MaxDuration: 2.5,
	},
	"groan": {
		Variants:    []string{"painful groan", "frustrated groan", "tired groan", "annoyed groan"},
		Emotions:    []string{"pain", "frustration", "exhaustion", "annoyance"},
		MinDuration: 0.5, MaxDuration: 2.0,
	},
	"moan": {
		Variants:    []string{"painful moan", "sad moan", "tired moan"},
		Emotions:    []string{"pain", "sadness", "exhaustion"},
		MinDuration: 0.5, MaxDuration: 2.0,
	},
	"grunt": {
		Variants:    []string{"effort grunt", "acknowledgment grunt", "frustrated grunt"},
		Emotions:    []string{"effort", "acknowledgment", "frustration"},
		MinDuration: 0.2, MaxDuration: 1.0,
	},
	"cry": {
		Variants:    []string{"sobbing", "weeping", "sniffling", "wailing", "quiet crying"},
		Emotions:    []string{"sadness", "joy", "pain", "relief"},
		MinDuration: 2.0, MaxDuration: 5.0,
	},
	"scream": {
		Variants:    []string{"terror scream", "excitement scream", "pain scream", "surprise scream"},
		Emotions:    []string{"terror", "excitement", "pain", "surprise"},
		MinDuration: 0.5, MaxDuration: 2.0,
	},
	"gasp": {
		Variants:    []string{"shocked gasp", "surprised gasp", "fearful gasp", "breathless gasp"},
		Emotions:    []string{"shock", "surprise", "fear", "exhaustion"},
		MinDuration: 0.3, MaxDuration: 1.0,
	},
	"cough": {
		Variants:    []string{"dry cough", "wet cough", "clearing throat", "choking cough", "polite cough"},
		Emotions:    []string{"discomfort", "illness", "nervousness", "attention-seeking"},
		MinDuration: 0.3, MaxDuration: 2.0,
	},
	"sneeze": {
		Variants:    []string{"loud sneeze", "quiet sneeze", "multiple sneezes", "suppressed sneeze"},
		Emotions:    []string{"neutral", "embarrassment"},
		MinDuration: 0.5, MaxDuration: 1.5,
	},
	"yawn": {
		Variants:    []string{"tired yawn", "bored yawn", "contagious yawn", "suppressed yawn"},
		Emotions:    []string{"tiredness", "boredom"},
		MinDuration: 2.0, MaxDuration: 4.0,
	},
	"hiccup": {
		Variants:    []string{"single hiccup", "multiple hiccups", "loud hiccup", "squeaky hiccup"},
		Emotions:    []string{"surprise", "embarrassment"},
		MinDuration: 0.2, MaxDuration: 0.5,
	},
	"stomach_growl": {
		Variants:    []string{"hungry stomach growl", "digestion sounds"},
		Emotions:    []string{"hunger", "embarrassment"},
		MinDuration: 1.0, MaxDuration: 3.0,
	},
	"burp": {
		Variants:    []string{"small burp", "suppressed burp", "accidental burp"},
		Emotions:    []string{"embarrassment", "satisfaction"},
		MinDuration: 0.3, MaxDuration: 1.0,
	},
	"eating": {
		Variants:    []string{"chewing", "munching", "crunching", "slurping", "swallowing"},
		Emotions:    []string{"enjoyment", "hunger"},
		MinDuration: 0.5, MaxDuration: 2.0,
	},
	"drinking": {
		Variants:    []string{"sipping", "gulping", "swallowing liquid", "ahh after drinking"},
		Emotions:    []string{"thirst", "satisfaction"},
		MinDuration: 0.5, MaxDuration: 2.0,
	},
	"breathing": {
		Variants:    []string{"heavy breathing", "panting", "wheezing", "calm breathing", "holding breath"},
		Emotions:    []string{"exhaustion", "fear", "calm", "anticipation"},
		MinDuration: 2.0, MaxDuration: 5.0,
	},
	"hmm": {
		Variants:    []string{"thinking hmm", "skeptical hmm", "interested hmm", "confused hmm"},
		Emotions:    []string{"contemplation", "skepticism", "interest", "confusion"},
		MinDuration: 0.5, MaxDuration: 1.5,
	},
	"ah": {
		Variants:    []string{"realization ah", "understanding ah", "surprised ah"},
		Emotions:    []string{"realization", "understanding", "surprise"},
		MinDuration: 0.3, MaxDuration: 1.0,
	},
	"oh": {
		Variants:    []string{"surprised oh", "disappointed oh", "interested oh"},
		Emotions:    []string{"surprise", "disappointment", "interest"},
		MinDuration: 0.3, MaxDuration: 1.0,
	},
	"effort": {
		Variants:    []string{"lifting grunt", "pushing sound", "straining", "exertion"},
		Emotions:    []string{"determination", "struggle"},
		MinDuration: 0.5, MaxDuration: 2.0,
	},
	"sleep": {
		Variants:    []string{"snoring", "sleep talking", "mumbling", "peaceful breathing"},
		Emotions:    []string{"peaceful", "restless"},
		MinDuration: 2.0, MaxDuration: 5.0,
	},
}

// DefaultDuration returns the lower bound of the category's natural range,
// or a generic 1.5s for anything unknown.
func DefaultDuration(category string) float64 {
	if info, ok := Catalog[category]; ok {
		return info.MinDuration
	}
	return 1.5
}
