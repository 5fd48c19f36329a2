package script

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
)

var (
	headingRE  = regexp.MustCompile(`(?m)^(INT\.|EXT\.)\s+([^-\n]+?)\s*-\s*(\w+)\s*$`)
	speakerRE  = regexp.MustCompile(`(?m)^([A-Z][A-Z .']{1,40})\n(.+)$`)
	capsLineRE = regexp.MustCompile(`^[A-Z][A-Z .']+$`)
	bracketRE  = regexp.MustCompile(`\[([^\]]+)\]`)
	parenRE    = regexp.MustCompile(`\(([^)]+)\)`)
)

// Fallback parses screenplay text with plain heuristics. It never fails:
// text without a single scene heading becomes one synthesized scene.
func Fallback(scriptText string, maxScene float64) []scene.Scene {
	log.Printf("[>] Using fallback script parser")

	headings := headingRE.FindAllStringSubmatchIndex(scriptText, -1)
	var scenes []scene.Scene

	for n, h := range headings {
		locType := scriptText[h[2]:h[3]]
		location := strings.TrimSpace(scriptText[h[4]:h[5]])
		timeOfDay := strings.ToLower(scriptText[h[6]:h[7]])

		end := len(scriptText)
		if n+1 < len(headings) {
			end = headings[n+1][0]
		}
		content := scriptText[h[1]:end]

		sc := parseBlock(content, maxScene)
		sc.ID = fmt.Sprintf("scene_%03d", n+1)
		sc.Location = locType + " " + location
		sc.Environment = sc.Location
		sc.TimeOfDay = timeOfDay
		if sc.Description == "" {
			sc.Description = "Scene at " + location
		}
		scenes = append(scenes, sc)
	}

	if len(scenes) == 0 {
		desc := strings.TrimSpace(scriptText)
		if len(desc) > 200 {
			desc = desc[:200]
		}
		dur := 30.0
		if maxScene < dur {
			dur = maxScene
		}
		scenes = append(scenes, scene.Scene{
			ID:              "scene_001",
			Description:     desc,
			Duration:        dur,
			TimeOfDay:       "day",
			Actions:         []string{strings.TrimSpace(scriptText)},
			CameraMovements: []string{scene.DefaultCamera},
			MusicMood:       MusicMood(desc),
		})
	}
	return scenes
}

// parseBlock extracts dialogue, actions, camera and sound cues from the
// body of one scene.
func parseBlock(content string, maxScene float64) scene.Scene {
	var sc scene.Scene

	for _, m := range speakerRE.FindAllStringSubmatch(content, -1) {
		character := strings.TrimSpace(m[1])
		text := strings.TrimSpace(m[2])

		var nonVerbal []string
		for _, nv := range bracketRE.FindAllStringSubmatch(text, -1) {
			nonVerbal = append(nonVerbal, nv[1])
		}
		text = strings.TrimSpace(bracketRE.ReplaceAllString(text, ""))

		sc.Dialogue = append(sc.Dialogue, scene.DialogueLine{
			Character: character,
			Text:      text,
			Emotion:   lineEmotion(text),
			NonVerbal: nonVerbal,
		})
		if !contains(sc.Characters, character) {
			sc.Characters = append(sc.Characters, character)
		}
	}

	spoken := make(map[string]bool, len(sc.Dialogue))
	for _, d := range sc.Dialogue {
		spoken[d.Text] = true
	}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || capsLineRE.MatchString(line) || spoken[strings.TrimSpace(bracketRE.ReplaceAllString(line, ""))] {
			continue
		}
		sc.Actions = append(sc.Actions, line)
	}
	if len(sc.Actions) > 0 {
		sc.Description = sc.Actions[0]
	}

	for _, m := range bracketRE.FindAllStringSubmatch(content, -1) {
		sc.CameraMovements = append(sc.CameraMovements, m[1])
	}
	for _, m := range parenRE.FindAllStringSubmatch(content, -1) {
		sc.SoundEffects = append(sc.SoundEffects, m[1])
	}

	words := len(strings.Fields(content))
	sc.Duration = clampDuration(float64(words)/3, maxScene)

	sc.MusicMood = MusicMood(sc.Description)
	sc.EmotionExpressions = dialogueEmotions(sc.Dialogue)
	return sc
}

// lineEmotion guesses delivery from punctuation.
func lineEmotion(text string) string {
	switch {
	case strings.Contains(text, "..."):
		return "hesitant"
	case strings.Contains(text, "!"):
		return "excited"
	case strings.Contains(text, "?"):
		return "questioning"
	default:
		return "neutral"
	}
}

var moodKeywords = []struct {
	mood  string
	words []string
}{
	{"epic action", []string{"battle", "fight", "action", "chase"}},
	{"romantic", []string{"love", "romantic", "kiss", "tender"}},
	{"suspenseful", []string{"suspense", "mystery", "dark", "scary"}},
	{"uplifting", []string{"happy", "joy", "celebration", "fun"}},
	{"melancholic", []string{"sad", "death", "loss", "goodbye"}},
}

// MusicMood derives a music descriptor from a scene description.
func MusicMood(description string) string {
	lower := strings.ToLower(description)
	for _, mk := range moodKeywords {
		for _, w := range mk.words {
			if strings.Contains(lower, w) {
				return mk.mood
			}
		}
	}
	return "cinematic"
}

// dialogueEmotions collects the distinct emotions present in a scene's
// dialogue, first-appearance order.
func dialogueEmotions(dialogue []scene.DialogueLine) []string {
	var out []string
	for _, d := range dialogue {
		if d.Emotion != "" && !contains(out, d.Emotion) {
			out = append(out, d.Emotion)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// DevelopFallback produces the template script used when no LLM is
// reachable, keeping the concept flow alive end to end.
func DevelopFallback(concept string) string {
	return fmt.Sprintf(`FADE IN:

INT. LOCATION - DAY

Based on the concept: %s

CHARACTER ONE enters the scene.

CHARACTER ONE
This is where our story begins.

CHARACTER TWO appears.

CHARACTER TWO
What happens next?

They look at each other, understanding dawning.

FADE OUT.`, concept)
}

// Metadata summarizes a processed script.
type Metadata struct {
	Title         string   `json:"title" yaml:"title"`
	TotalScenes   int      `json:"total_scenes" yaml:"total_scenes"`
	TotalDuration float64  `json:"total_duration" yaml:"total_duration"`
	Characters    []string `json:"characters,omitempty" yaml:"characters,omitempty"`
	Locations     []string `json:"locations,omitempty" yaml:"locations,omitempty"`
}

var titleRE = regexp.MustCompile(`(?i)TITLE:\s*(.+)`)

// ExtractMetadata derives script metadata from the text and its scenes.
func ExtractMetadata(scriptText string, scenes []scene.Scene) Metadata {
	md := Metadata{Title: "Untitled Script", TotalScenes: len(scenes)}
	if m := titleRE.FindStringSubmatch(scriptText); m != nil {
		md.Title = strings.TrimSpace(m[1])
	}
	for _, sc := range scenes {
		md.TotalDuration += sc.Duration
		for _, c := range sc.Characters {
			if !contains(md.Characters, c) {
				md.Characters = append(md.Characters, c)
			}
		}
		if sc.Location != "" && !contains(md.Locations, sc.Location) {
			md.Locations = append(md.Locations, sc.Location)
		}
	}
	return md
}
