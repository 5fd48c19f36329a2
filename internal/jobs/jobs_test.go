package jobs

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/backend"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/config"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/coordinator"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/script"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/tier"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/video"
)

// testHandler wires a handler with no LLM and no loaded back-ends: parsing
// works, generation fails per scene. That is exactly the degraded mode the
// dispatch contract has to survive.
func testHandler(t *testing.T) *Handler {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.TempDir = cfg.OutputDir

	spec := tier.Select(0)
	models := &backend.ModelSet{}
	coord := coordinator.New(cfg, spec, models, &video.FFmpegEncoder{EncoderName: "libx264", Quality: 23})
	return NewHandler(script.NewProcessor("", "", "deepseek-chat"), coord, models, spec)
}

func TestProcessBadPayload(t *testing.T) {
	h := testHandler(t)
	resp := h.Process(context.Background(), []byte("{not json"))
	if resp.Status != "error" || resp.Error == "" {
		t.Errorf("malformed payload must error, got %+v", resp)
	}
}

func TestProcessUnknownType(t *testing.T) {
	h := testHandler(t)
	resp := h.Process(context.Background(), []byte(`{"type":"render_pdf"}`))
	if resp.Status != "error" || !strings.Contains(resp.Error, "render_pdf") {
		t.Errorf("unknown type must name the offender, got %+v", resp)
	}
}

func TestProcessRejectsBadResolution(t *testing.T) {
	h := testHandler(t)
	resp := h.Process(context.Background(), []byte(`{"type":"health_check","options":{"resolution":"8k"}}`))
	if resp.Status != "error" {
		t.Errorf("unknown resolution must be rejected, got %+v", resp)
	}
}

func TestHealthCheck(t *testing.T) {
	h := testHandler(t)
	resp := h.Process(context.Background(), []byte(`{"id":"j1","type":"health_check"}`))

	if resp.Status != "ok" || resp.Health == nil {
		t.Fatalf("health check failed: %+v", resp)
	}
	if resp.Health.Tier != "none" {
		t.Errorf("tier = %q, want none", resp.Health.Tier)
	}
	if resp.JobID != "j1" {
		t.Errorf("job id lost: %q", resp.JobID)
	}
}

func TestConceptWithoutGeneration(t *testing.T) {
	h := testHandler(t)
	h.ManifestDir = t.TempDir()
	payload := `{"id":"j7","type":"concept_to_script","concept":"a lighthouse keeper finds a map","options":{"generate_videos":false}}`

	resp := h.Process(context.Background(), []byte(payload))

	if resp.Status != "ok" {
		t.Fatalf("concept flow failed: %+v", resp)
	}
	if !strings.Contains(resp.ScriptText, "a lighthouse keeper finds a map") {
		t.Error("script text should embed the concept")
	}
	if len(resp.Scenes) == 0 {
		t.Error("no scenes in response")
	}
	if resp.Results != nil {
		t.Errorf("generate_videos=false must skip generation, got %d results", len(resp.Results))
	}
	if resp.Metadata == nil || resp.Metadata.TotalScenes != len(resp.Scenes) {
		t.Errorf("metadata inconsistent: %+v", resp.Metadata)
	}

	m, err := script.ReadManifest(filepath.Join(h.ManifestDir, "j7_breakdown.yaml"))
	if err != nil {
		t.Fatalf("breakdown manifest not written: %v", err)
	}
	if len(m.Scenes) != len(resp.Scenes) {
		t.Errorf("manifest scenes = %d, want %d", len(m.Scenes), len(resp.Scenes))
	}
}

func TestScriptToVideoIsolatesSceneFailures(t *testing.T) {
	h := testHandler(t)
	job := Job{
		Type:   TypeScriptToVideo,
		Script: "INT. SHED - DAY\n\nA hammer falls off the bench.\n\nEXT. YARD - NIGHT\n\nRain hits the tin roof.",
	}
	raw, _ := json.Marshal(job)

	resp := h.Process(context.Background(), raw)

	if resp.Status != "ok" {
		t.Fatalf("parse-only failure should not kill the job: %+v", resp)
	}
	if len(resp.Results) != len(resp.Scenes) || len(resp.Scenes) != 2 {
		t.Fatalf("results = %d, scenes = %d, want 2 and 2", len(resp.Results), len(resp.Scenes))
	}
	// No back-end is loaded, so every scene fails in place.
	for _, r := range resp.Results {
		if r.Err == "" {
			t.Errorf("%s: expected a per-scene error with no back-ends loaded", r.SceneID)
		}
	}
}

func TestBatchScenesKeepsSlots(t *testing.T) {
	h := testHandler(t)
	payload := `{
		"type": "batch_scenes",
		"scenes": [
			{"id": "good", "description": "a cat watches the rain", "duration": 4},
			{"id": "bad_duration", "description": "x"}
		]
	}`

	resp := h.Process(context.Background(), []byte(payload))

	if resp.Status != "ok" {
		t.Fatalf("batch failed outright: %+v", resp)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("results = %d, want one per scene", len(resp.Results))
	}
	if resp.Results[1].Err == "" {
		t.Error("scene without duration must fail its slot")
	}
	if resp.Results[0].SceneID != "good" {
		t.Errorf("slot order lost: %+v", resp.Results)
	}
}

func TestBatchWithoutScenes(t *testing.T) {
	h := testHandler(t)
	resp := h.Process(context.Background(), []byte(`{"type":"batch_scenes"}`))
	if resp.Status != "error" {
		t.Errorf("empty batch must be rejected, got %+v", resp)
	}
}
