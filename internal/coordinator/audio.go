package coordinator

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/backend"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/compose"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/sounds"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/system"
)

// generateAudio produces every audio modality for a scene. Failures are
// per modality: a dead music back-end costs the music layer, not the
// scene. Artifact paths are recorded into the audio map as they land.
func (c *Coordinator) generateAudio(ctx context.Context, sc scene.Scene, audio map[string][]string) compose.Tracks {
	var t compose.Tracks

	if len(sc.Dialogue) > 0 {
		if path := c.generateDialogue(ctx, sc); path != "" {
			t.Dialogue = path
			audio["dialogue"] = []string{path}
		}
	}

	if sc.MusicMood != "" {
		if c.models.Music == nil {
			log.Printf("[!] %s: music back-end not loaded, skipping music", sc.ID)
		} else {
			prompt := musicPrompt(sc.MusicMood)
			log.Printf("[>] %s: generating %s music for %.1fs", sc.ID, sc.MusicMood, sc.Duration)
			path, err := c.models.Music.GenerateMusic(ctx, prompt, sc.Duration, sc.ID+"_music_"+shortID())
			if err != nil {
				log.Printf("[!] %s: music generation failed: %v", sc.ID, err)
			} else {
				t.Music = path
				audio["music"] = []string{path}
			}
		}
	}

	if c.models.SFX == nil {
		if len(sc.SoundEffects) > 0 || len(sc.HumanSounds) > 0 {
			log.Printf("[!] %s: sfx back-end not loaded, skipping effects", sc.ID)
		}
		return t
	}

	for i, name := range sc.SoundEffects {
		prompt := name + ", cinematic sound effect, high quality"
		path, err := c.models.SFX.GenerateSFX(ctx, prompt, sfxSeconds(sc.Duration), fmt.Sprintf("%s_sfx%02d_%s", sc.ID, i, shortID()))
		if err != nil {
			log.Printf("[!] %s: sfx %q failed: %v", sc.ID, name, err)
			continue
		}
		t.SFX = append(t.SFX, path)
		audio["sfx"] = append(audio["sfx"], path)
	}

	// Human sounds are generated and recorded as artifacts for downstream
	// editing; they are not auto-mixed into the composite.
	for i, cue := range humanCues(sc) {
		path, err := c.models.SFX.GenerateSFX(ctx, backend.SoundPrompt(cue), cue.Duration, fmt.Sprintf("%s_hum%02d_%s", sc.ID, i, shortID()))
		if err != nil {
			log.Printf("[!] %s: human sound %q failed: %v", sc.ID, cue.Category, err)
			continue
		}
		audio["human_sounds"] = append(audio["human_sounds"], path)
	}

	return t
}

// generateDialogue synthesizes each spoken line in order and joins them
// into one track. Lines that fail are skipped, not substituted.
func (c *Coordinator) generateDialogue(ctx context.Context, sc scene.Scene) string {
	if c.models.Speech == nil {
		log.Printf("[!] %s: speech back-end not loaded, skipping dialogue", sc.ID)
		return ""
	}

	var lines []string
	for i, d := range sc.Dialogue {
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		sample := matchVoiceSample(sc.VoiceSamples, d.Character)
		if sample != "" {
			log.Printf("[>] %s: cloning voice for %s", sc.ID, d.Character)
		}
		path, err := c.models.Speech.Speak(ctx, d.Text, d.Emotion, sample, fmt.Sprintf("%s_line%02d_%s", sc.ID, i, shortID()))
		if err != nil {
			log.Printf("[!] %s: dialogue line %d failed: %v", sc.ID, i, err)
			continue
		}
		lines = append(lines, path)
	}
	if len(lines) == 0 {
		return ""
	}

	out := filepath.Join(c.cfg.TempDir, sc.ID+"_dialogue.wav")
	if err := compose.ConcatWAVs(ctx, lines, c.cfg.TempDir, out); err != nil {
		log.Printf("[!] %s: dialogue concat failed: %v", sc.ID, err)
		return ""
	}
	if d, err := system.GetAudioDuration(out); err == nil && d > sc.Duration {
		log.Printf("[!] %s: dialogue runs %.1fs against a %.1fs scene", sc.ID, d, sc.Duration)
	}
	return out
}

// matchVoiceSample picks a reference sample whose name mentions the
// character. Empty means the default voice.
func matchVoiceSample(samples []string, character string) string {
	for _, s := range samples {
		if character != "" && strings.Contains(strings.ToLower(s), strings.ToLower(character)) {
			return s
		}
	}
	return ""
}

// musicPrompt augments the mood with concrete instrumentation.
func musicPrompt(mood string) string {
	prompt := mood + " cinematic orchestral film score"
	lower := strings.ToLower(mood)
	switch {
	case strings.Contains(lower, "action"):
		prompt += ", epic drums, intense strings, brass fanfares"
	case strings.Contains(lower, "romantic"):
		prompt += ", soft piano, warm strings, gentle melody"
	case strings.Contains(lower, "suspense"):
		prompt += ", tension building, dark atmosphere, subtle percussion"
	}
	return prompt
}

// sfxSeconds bounds effect length: short scenes get scene-length effects,
// long scenes get stingers.
func sfxSeconds(sceneDuration float64) float64 {
	if sceneDuration < 3 {
		return sceneDuration
	}
	return 3
}

// humanCues assembles the scene's non-verbal cue list from the explicit
// human_sounds field, contextual inference, and dialogue markers. Explicit
// and inferred categories are deduplicated; dialogue cues stay per line
// because they carry the speaker.
func humanCues(sc scene.Scene) []sounds.HumanSound {
	emotion := "neutral"
	if len(sc.EmotionExpressions) > 0 {
		emotion = sc.EmotionExpressions[0]
	}

	var cues []sounds.HumanSound
	add := func(category, emo, character string, duration float64) {
		if duration <= 0 {
			duration = sounds.DefaultDuration(category)
		}
		cue := sounds.HumanSound{
			Category:  category,
			Emotion:   emo,
			Intensity: 0.7,
			Duration:  duration,
			Character: character,
			Context:   sc.Environment,
		}
		if err := cue.Validate(); err != nil {
			log.Printf("[-] %s: dropping cue: %v", sc.ID, err)
			return
		}
		cues = append(cues, cue)
	}

	seen := make(map[string]bool)
	for _, name := range sc.HumanSounds {
		cat, ok := sounds.Category(name)
		if !ok {
			log.Printf("[-] %s: dropping unknown human sound %q", sc.ID, name)
			continue
		}
		if !seen[cat] {
			seen[cat] = true
			add(cat, emotion, "", 0)
		}
	}
	for _, cat := range sounds.Contextual(sc.Description, emotion) {
		if !seen[cat] {
			seen[cat] = true
			add(cat, emotion, "", 0)
		}
	}
	for _, d := range sc.Dialogue {
		for _, nv := range d.NonVerbal {
			if cat, ok := sounds.ParseMarker(nv); ok {
				add(cat, d.Emotion, d.Character, 1.0)
			}
		}
	}
	return cues
}
