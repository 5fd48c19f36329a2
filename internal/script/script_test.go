package script

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/config"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
)

var sampleScript = `FADE IN:

INT. OFFICE - DAY

John sits at his desk, staring at the screen.

JOHN
Did you see the report? [waves hand]

SARAH
I can't believe it...

(papers rustling)

EXT. CITY STREET - NIGHT

` + longActionBlock + `

FADE OUT.`

// longActionBlock is big enough to hit the duration ceiling.
var longActionBlock = strings.TrimSpace(strings.Repeat("The hero sprints through the battle as explosions tear the street apart. ", 15))

func TestFallbackHeadings(t *testing.T) {
	scenes := Fallback(sampleScript, 30)

	if len(scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(scenes))
	}
	if scenes[0].Location != "INT. OFFICE" || scenes[0].TimeOfDay != "day" {
		t.Errorf("scene 1 heading parsed as %q / %q", scenes[0].Location, scenes[0].TimeOfDay)
	}
	if scenes[1].Location != "EXT. CITY STREET" || scenes[1].TimeOfDay != "night" {
		t.Errorf("scene 2 heading parsed as %q / %q", scenes[1].Location, scenes[1].TimeOfDay)
	}
	if scenes[0].ID != "scene_001" || scenes[1].ID != "scene_002" {
		t.Errorf("scene ids = %q, %q", scenes[0].ID, scenes[1].ID)
	}
}

func TestFallbackDurationClamp(t *testing.T) {
	scenes := Fallback(sampleScript, 30)

	// The office block runs 24 words, estimated at a third of a second
	// per word.
	if scenes[0].Duration != 8 {
		t.Errorf("short scene duration = %.1f, want 8", scenes[0].Duration)
	}
	// The long street block ceilings at the scene maximum.
	if scenes[1].Duration != 30 {
		t.Errorf("long scene duration = %.1f, want 30", scenes[1].Duration)
	}
	// And still splits into multiple shot-sized segments downstream.
	if segs := scene.Split(scenes[1], 8); len(segs) < 2 {
		t.Errorf("long scene should need several segments, got %d", len(segs))
	}

	// A nearly empty block floors at 5 seconds.
	tiny := Fallback("INT. HUT - DAY\n\nHe waits.", 30)
	if len(tiny) != 1 || tiny[0].Duration != 5 {
		t.Errorf("tiny scene duration = %+v, want 5", tiny)
	}
}

func TestFallbackDialogue(t *testing.T) {
	scenes := Fallback(sampleScript, 30)
	d := scenes[0].Dialogue

	if len(d) != 2 {
		t.Fatalf("dialogue lines = %d, want 2", len(d))
	}
	if d[0].Character != "JOHN" || d[1].Character != "SARAH" {
		t.Errorf("speakers = %q, %q", d[0].Character, d[1].Character)
	}
	if d[0].Emotion != "questioning" {
		t.Errorf("question line emotion = %q", d[0].Emotion)
	}
	if d[1].Emotion != "hesitant" {
		t.Errorf("trailing-off line emotion = %q", d[1].Emotion)
	}
	if len(d[0].NonVerbal) != 1 || d[0].NonVerbal[0] != "waves hand" {
		t.Errorf("non-verbal cues = %v", d[0].NonVerbal)
	}
	if strings.Contains(d[0].Text, "[") {
		t.Errorf("bracket cue left in dialogue text: %q", d[0].Text)
	}
	if got := scenes[0].Characters; len(got) != 2 {
		t.Errorf("characters = %v", got)
	}
}

func TestFallbackCues(t *testing.T) {
	scenes := Fallback(sampleScript, 30)

	if len(scenes[0].SoundEffects) != 1 || scenes[0].SoundEffects[0] != "papers rustling" {
		t.Errorf("sound effects = %v", scenes[0].SoundEffects)
	}
	if len(scenes[0].CameraMovements) != 1 || scenes[0].CameraMovements[0] != "waves hand" {
		t.Errorf("bracket cues = %v", scenes[0].CameraMovements)
	}
	if scenes[1].MusicMood != "epic action" {
		t.Errorf("street scene mood = %q", scenes[1].MusicMood)
	}
}

func TestFallbackNoHeadings(t *testing.T) {
	scenes := Fallback("A lone figure walks across an empty beach at dawn.", 30)

	if len(scenes) != 1 {
		t.Fatalf("scenes = %d, want 1", len(scenes))
	}
	sc := scenes[0]
	if sc.Duration != 30 {
		t.Errorf("duration = %.1f, want 30", sc.Duration)
	}
	if len(sc.CameraMovements) != 1 || sc.CameraMovements[0] != scene.DefaultCamera {
		t.Errorf("camera = %v", sc.CameraMovements)
	}
	if sc.Description == "" {
		t.Error("synthesized scene needs a description")
	}
}

func TestMusicMood(t *testing.T) {
	cases := []struct {
		description string
		want        string
	}{
		{"A fierce battle erupts on the bridge", "epic action"},
		{"They share a tender moment by the fire", "romantic"},
		{"A dark figure watches from the alley", "suspenseful"},
		{"The celebration spills into the street", "uplifting"},
		{"She says goodbye at the station", "melancholic"},
		{"A man buys coffee", "cinematic"},
	}
	for _, c := range cases {
		if got := MusicMood(c.description); got != c.want {
			t.Errorf("MusicMood(%q) = %q, want %q", c.description, got, c.want)
		}
	}
}

func TestSegmentWithoutLLM(t *testing.T) {
	p := NewProcessor("", "https://api.deepseek.com/v1", "deepseek-chat")

	scenes, err := p.Segment(context.Background(), sampleScript, config.Options{MaxSceneDuration: 20})
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	for _, sc := range scenes {
		if sc.Resolution != "720p" || sc.FPS != 30 {
			t.Errorf("%s: defaults not applied: %q/%d", sc.ID, sc.Resolution, sc.FPS)
		}
		if len(sc.Segments) == 0 {
			t.Errorf("%s: no segments", sc.ID)
		}
		var sum float64
		for _, seg := range sc.Segments {
			sum += seg.Duration
		}
		if sum != sc.Duration {
			t.Errorf("%s: segment durations sum to %.2f, scene is %.2f", sc.ID, sum, sc.Duration)
		}
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	p := NewProcessor("", "", "deepseek-chat")
	if _, err := p.Segment(context.Background(), "   \n", config.Options{}); err == nil {
		t.Error("empty script must be rejected")
	}
}

func TestDevelopFallbackParses(t *testing.T) {
	p := NewProcessor("", "", "deepseek-chat")

	text, scenes, err := p.Develop(context.Background(), "a robot learns to paint", config.Options{})
	if err != nil {
		t.Fatalf("Develop: %v", err)
	}
	if !strings.Contains(text, "a robot learns to paint") {
		t.Error("template script should embed the concept")
	}
	if len(scenes) != 1 {
		t.Fatalf("scenes = %d, want 1", len(scenes))
	}
	if len(scenes[0].Dialogue) != 2 {
		t.Errorf("template dialogue lines = %d, want 2", len(scenes[0].Dialogue))
	}
}

func TestExtractMetadata(t *testing.T) {
	scenes := Fallback(sampleScript, 30)
	md := ExtractMetadata("TITLE: The Report\n"+sampleScript, scenes)

	if md.Title != "The Report" {
		t.Errorf("title = %q", md.Title)
	}
	if md.TotalScenes != 2 {
		t.Errorf("total scenes = %d", md.TotalScenes)
	}
	if md.TotalDuration != 38 {
		t.Errorf("total duration = %.1f, want 38", md.TotalDuration)
	}
	if len(md.Locations) != 2 {
		t.Errorf("locations = %v", md.Locations)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	scenes := Fallback(sampleScript, 30)
	m := &Manifest{
		Metadata: ExtractMetadata(sampleScript, scenes),
		Scenes:   scenes,
	}

	path := filepath.Join(t.TempDir(), "breakdown.yaml")
	if err := WriteManifest(m, path); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	got, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(got.Scenes) != len(m.Scenes) {
		t.Fatalf("scenes = %d, want %d", len(got.Scenes), len(m.Scenes))
	}
	if got.Scenes[0].ID != "scene_001" || got.Scenes[1].Location != "EXT. CITY STREET" {
		t.Errorf("manifest lost scene fields: %+v", got.Scenes)
	}
}
