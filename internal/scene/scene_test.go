package scene

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSplitSingleSegment(t *testing.T) {
	s := Scene{
		ID:          "scene_001",
		Description: "A quiet office at dawn",
		Duration:    6,
		Dialogue: []DialogueLine{
			{Character: "JOHN", Text: "Morning."},
		},
		CameraMovements: []string{"wide shot"},
	}

	segments := Split(s, 8)
	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	seg := segments[0]
	if seg.ID != "scene_001" {
		t.Errorf("Expected segment id scene_001, got %s", seg.ID)
	}
	if seg.Duration != s.Duration {
		t.Errorf("Expected duration %.1f, got %.1f", s.Duration, seg.Duration)
	}
	if seg.Prompt != s.Description {
		t.Errorf("Expected prompt to equal scene description, got %q", seg.Prompt)
	}
	if len(seg.Dialogue) != 1 {
		t.Errorf("Expected full dialogue on single segment, got %d lines", len(seg.Dialogue))
	}
	if seg.Camera != "wide shot" {
		t.Errorf("Expected camera from scene list, got %q", seg.Camera)
	}
}

func TestSplitDurationSum(t *testing.T) {
	s := Scene{ID: "scene_002", Description: "A chase through the market", Duration: 30}

	segments := Split(s, 8)
	if len(segments) != 4 {
		t.Fatalf("Expected 4 segments for 30s at 8s max, got %d", len(segments))
	}

	sum := 0.0
	for _, seg := range segments {
		if seg.Duration > 8 {
			t.Errorf("Segment %s duration %.2f exceeds max", seg.ID, seg.Duration)
		}
		sum += seg.Duration
	}
	if math.Abs(sum-s.Duration) > 1e-9 {
		t.Errorf("Segment durations sum to %.4f, want %.4f", sum, s.Duration)
	}

	wantIDs := []string{"scene_002a", "scene_002b", "scene_002c", "scene_002d"}
	for i, seg := range segments {
		if seg.ID != wantIDs[i] {
			t.Errorf("Segment %d id = %s, want %s", i, seg.ID, wantIDs[i])
		}
	}
}

func TestSplitDialoguePartition(t *testing.T) {
	lines := []DialogueLine{
		{Character: "A", Text: "one"},
		{Character: "B", Text: "two"},
		{Character: "A", Text: "three"},
		{Character: "B", Text: "four"},
		{Character: "A", Text: "five"},
	}
	s := Scene{ID: "scene_003", Description: "Argument", Duration: 24, Dialogue: lines}

	segments := Split(s, 8)
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}

	wantCounts := []int{2, 2, 1}
	got := 0
	for i, seg := range segments {
		if len(seg.Dialogue) != wantCounts[i] {
			t.Errorf("Segment %d has %d lines, want %d", i, len(seg.Dialogue), wantCounts[i])
		}
		got += len(seg.Dialogue)
	}
	if got != len(lines) {
		t.Fatalf("Partition total %d, want %d", got, len(lines))
	}

	// Order must be preserved end to end.
	idx := 0
	for _, seg := range segments {
		for _, d := range seg.Dialogue {
			if d.Text != lines[idx].Text {
				t.Errorf("Line %d out of order: got %q, want %q", idx, d.Text, lines[idx].Text)
			}
			idx++
		}
	}
}

func TestSplitCameraDefaults(t *testing.T) {
	s := Scene{
		ID:              "scene_004",
		Description:     "Long walk",
		Duration:        20,
		CameraMovements: []string{"tracking shot"},
	}
	segments := Split(s, 8)
	if len(segments) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segments))
	}
	if segments[0].Camera != "tracking shot" {
		t.Errorf("Segment 0 camera = %q, want tracking shot", segments[0].Camera)
	}
	for _, seg := range segments[1:] {
		if seg.Camera != DefaultCamera {
			t.Errorf("Segment %s camera = %q, want %q", seg.ID, seg.Camera, DefaultCamera)
		}
	}
}

func TestDecodeValidates(t *testing.T) {
	good := json.RawMessage(`{"id":"s1","description":"desk","duration":5}`)
	s, err := Decode(good)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if s.FPS != 30 || s.Resolution != "720p" {
		t.Errorf("Expected defaults fps=30 res=720p, got fps=%d res=%s", s.FPS, s.Resolution)
	}

	bad := json.RawMessage(`{"id":"s2","description":"desk","duration":0}`)
	if _, err := Decode(bad); err == nil {
		t.Error("Expected error for zero duration")
	}

	noID := json.RawMessage(`{"description":"desk","duration":3}`)
	if _, err := Decode(noID); err == nil {
		t.Error("Expected error for missing id")
	}
}
