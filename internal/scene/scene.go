package scene

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Scene is one narrative beat produced by the segmenter. Once built it is
// read-only for the rest of the run: the coordinator never mutates
// dialogue or duration fields.
type Scene struct {
	ID                 string         `json:"id" yaml:"id"`
	Description        string         `json:"description" yaml:"description"`
	Duration           float64        `json:"duration" yaml:"duration"` // seconds
	Resolution         string         `json:"resolution,omitempty" yaml:"resolution,omitempty"`
	FPS                int            `json:"fps,omitempty" yaml:"fps,omitempty"`
	Location           string         `json:"location,omitempty" yaml:"location,omitempty"`
	TimeOfDay          string         `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`
	Characters         []string       `json:"characters,omitempty" yaml:"characters,omitempty"`
	Dialogue           []DialogueLine `json:"dialogue,omitempty" yaml:"dialogue,omitempty"`
	Actions            []string       `json:"actions,omitempty" yaml:"actions,omitempty"`
	Environment        string         `json:"environment,omitempty" yaml:"environment,omitempty"`
	CameraMovements    []string       `json:"camera_movements,omitempty" yaml:"camera_movements,omitempty"`
	SoundEffects       []string       `json:"sound_effects,omitempty" yaml:"sound_effects,omitempty"`
	MusicMood          string         `json:"music_mood,omitempty" yaml:"music_mood,omitempty"`
	EmotionExpressions []string       `json:"emotion_expressions,omitempty" yaml:"emotion_expressions,omitempty"`
	VoiceSamples       []string       `json:"voice_samples,omitempty" yaml:"voice_samples,omitempty"`
	HumanSounds        []string       `json:"human_sounds,omitempty" yaml:"human_sounds,omitempty"`
	Segments           []Segment      `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// DialogueLine is one spoken line. Order within Scene.Dialogue is playback
// order and must survive segmentation.
type DialogueLine struct {
	Character string   `json:"character" yaml:"character"`
	Text      string   `json:"text" yaml:"text"`
	Emotion   string   `json:"emotion,omitempty" yaml:"emotion,omitempty"`
	NonVerbal []string `json:"non_verbal,omitempty" yaml:"non_verbal,omitempty"`
}

// Segment is a duration-bounded sub-unit of a Scene, used when the active
// video back-end cannot generate the full scene in one call.
type Segment struct {
	ID       string         `json:"segment_id" yaml:"segment_id"`
	Duration float64        `json:"duration" yaml:"duration"`
	Prompt   string         `json:"description" yaml:"description"`
	Dialogue []DialogueLine `json:"dialogue,omitempty" yaml:"dialogue,omitempty"`
	Camera   string         `json:"camera" yaml:"camera"`
}

// DefaultCamera is the directive used when a scene's camera list runs out.
const DefaultCamera = "medium shot"

// Validate checks scene invariants at the ingestion boundary.
func (s *Scene) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("scene: missing id")
	}
	if s.Duration <= 0 {
		return fmt.Errorf("scene %s: duration must be positive, got %.2f", s.ID, s.Duration)
	}
	for i, d := range s.Dialogue {
		if strings.TrimSpace(d.Text) == "" && len(d.NonVerbal) == 0 {
			return fmt.Errorf("scene %s: dialogue line %d is empty", s.ID, i)
		}
	}
	return nil
}

// Decode parses an untyped JSON scene payload into a validated Scene.
// Callers supply scenes over the job interface as loose JSON; everything
// downstream works with the typed record.
func Decode(raw json.RawMessage) (Scene, error) {
	var s Scene
	if err := json.Unmarshal(raw, &s); err != nil {
		return Scene{}, fmt.Errorf("scene: decode: %w", err)
	}
	if s.FPS == 0 {
		s.FPS = 30
	}
	if s.Resolution == "" {
		s.Resolution = "720p"
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// HasNonVerbal reports whether any dialogue line carries non-verbal markers.
func (s *Scene) HasNonVerbal() bool {
	for _, d := range s.Dialogue {
		if len(d.NonVerbal) > 0 {
			return true
		}
	}
	return false
}

// Split breaks a scene into segments of at most maxSegment seconds.
//
// A scene short enough for a single shot yields exactly one segment equal
// to the scene. Longer scenes are cut into full-length segments plus a
// remainder, labeled with lettered suffixes (a, b, c, ...). Dialogue is
// partitioned across segments in order, ceil(len/segments) lines each, so
// no line is duplicated or dropped. Camera directives are taken
// positionally from the scene's camera list, defaulting to a medium shot.
func Split(s Scene, maxSegment float64) []Segment {
	if maxSegment <= 0 || s.Duration <= maxSegment {
		return []Segment{{
			ID:       s.ID,
			Duration: s.Duration,
			Prompt:   s.Description,
			Dialogue: s.Dialogue,
			Camera:   cameraAt(s.CameraMovements, 0),
		}}
	}

	count := int(s.Duration / maxSegment)
	if float64(count)*maxSegment < s.Duration {
		count++
	}

	perSegment := 0
	if len(s.Dialogue) > 0 {
		perSegment = (len(s.Dialogue) + count - 1) / count
	}

	segments := make([]Segment, 0, count)
	remaining := s.Duration
	dialogueIdx := 0

	for i := 0; i < count; i++ {
		dur := maxSegment
		if remaining < dur {
			dur = remaining
		}
		remaining -= dur

		var lines []DialogueLine
		if perSegment > 0 && dialogueIdx < len(s.Dialogue) {
			end := dialogueIdx + perSegment
			if end > len(s.Dialogue) {
				end = len(s.Dialogue)
			}
			lines = s.Dialogue[dialogueIdx:end]
			dialogueIdx = end
		}

		segments = append(segments, Segment{
			ID:       s.ID + segmentSuffix(i),
			Duration: dur,
			Prompt:   fmt.Sprintf("%s (part %d)", s.Description, i+1),
			Dialogue: lines,
			Camera:   cameraAt(s.CameraMovements, i),
		})
	}

	return segments
}

func cameraAt(cameras []string, i int) string {
	if i < len(cameras) && strings.TrimSpace(cameras[i]) != "" {
		return cameras[i]
	}
	return DefaultCamera
}

func segmentSuffix(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	// Scenes long enough to need more than 26 segments get aa, ab, ...
	return string(rune('a'+i/26-1)) + string(rune('a'+i%26))
}
