// Package jobs is the external interface: typed job payloads, the dispatch
// handler shared by the queue worker and one-shot mode, and the Redis
// worker loop.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/backend"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/config"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/coordinator"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/script"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/tier"
)

// Job types accepted on the queue.
const (
	TypeScriptToVideo   = "script_to_video"
	TypeConceptToScript = "concept_to_script"
	TypeSingleScene     = "single_scene"
	TypeBatchScenes     = "batch_scenes"
	TypeHealthCheck     = "health_check"
)

// Job is one queued request. The type field selects the operation; the
// other fields are read per type.
type Job struct {
	ID      string            `json:"id,omitempty"`
	Type    string            `json:"type"`
	Script  string            `json:"script,omitempty"`
	Concept string            `json:"concept,omitempty"`
	Scene   json.RawMessage   `json:"scene,omitempty"`
	Scenes  []json.RawMessage `json:"scenes,omitempty"`
	Options config.Options    `json:"options"`
}

// Health is the health_check payload.
type Health struct {
	Tier         string   `json:"tier"`
	Capabilities []string `json:"capabilities"`
	HostMemory   string   `json:"host_memory"`
}

// Response is the result envelope for every job type. Scene results carry
// one entry per input scene, failed or not.
type Response struct {
	JobID      string               `json:"job_id,omitempty"`
	Status     string               `json:"status"`
	Error      string               `json:"error,omitempty"`
	ScriptText string               `json:"script_text,omitempty"`
	Metadata   *script.Metadata     `json:"metadata,omitempty"`
	Scenes     []scene.Scene        `json:"scenes,omitempty"`
	Results    []coordinator.Result `json:"results,omitempty"`
	TotalTime  float64              `json:"total_time,omitempty"`
	Health     *Health              `json:"health,omitempty"`
}

// Handler dispatches jobs to the segmenter and the coordinator. One
// Handler serves both delivery modes.
type Handler struct {
	processor *script.Processor
	coord     *coordinator.Coordinator
	models    *backend.ModelSet
	spec      tier.Spec

	// ManifestDir, when set, receives a YAML breakdown per script job so
	// runs can be reproduced without re-analyzing the script.
	ManifestDir string
}

func NewHandler(processor *script.Processor, coord *coordinator.Coordinator, models *backend.ModelSet, spec tier.Spec) *Handler {
	return &Handler{processor: processor, coord: coord, models: models, spec: spec}
}

// Process runs one job and always returns a Response; malformed payloads
// come back as status "error", never a panic or a dropped job.
func (h *Handler) Process(ctx context.Context, raw []byte) Response {
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return errorResponse("", fmt.Errorf("jobs: bad payload: %w", err))
	}
	if err := job.Options.Normalize(); err != nil {
		return errorResponse(job.ID, err)
	}
	log.Printf("[>] Job %s: %s", job.ID, job.Type)

	switch job.Type {
	case TypeScriptToVideo:
		return h.scriptToVideo(ctx, job)
	case TypeConceptToScript:
		return h.conceptToScript(ctx, job)
	case TypeSingleScene:
		return h.singleScene(ctx, job)
	case TypeBatchScenes:
		return h.batchScenes(ctx, job)
	case TypeHealthCheck:
		return Response{
			JobID:  job.ID,
			Status: "ok",
			Health: &Health{
				Tier:         h.spec.Tier.String(),
				Capabilities: h.models.Loaded(),
				HostMemory:   tier.HostReport(),
			},
		}
	default:
		return errorResponse(job.ID, fmt.Errorf("jobs: unknown type %q", job.Type))
	}
}

func (h *Handler) scriptToVideo(ctx context.Context, job Job) Response {
	scenes, err := h.processor.Segment(ctx, job.Script, job.Options)
	if err != nil {
		return errorResponse(job.ID, err)
	}
	md := script.ExtractMetadata(job.Script, scenes)
	h.dumpManifest(job.ID, md, scenes)

	start := time.Now()
	results := h.coord.ProcessBatch(ctx, scenes)
	return Response{
		JobID:     job.ID,
		Status:    "ok",
		Metadata:  &md,
		Scenes:    scenes,
		Results:   results,
		TotalTime: time.Since(start).Seconds(),
	}
}

func (h *Handler) dumpManifest(jobID string, md script.Metadata, scenes []scene.Scene) {
	if h.ManifestDir == "" {
		return
	}
	name := "breakdown.yaml"
	if jobID != "" {
		name = jobID + "_breakdown.yaml"
	}
	path := filepath.Join(h.ManifestDir, name)
	if err := script.WriteManifest(&script.Manifest{Metadata: md, Scenes: scenes}, path); err != nil {
		log.Printf("[!] Manifest write failed: %v", err)
		return
	}
	log.Printf("[*] Scene breakdown saved to %s", path)
}

func (h *Handler) conceptToScript(ctx context.Context, job Job) Response {
	text, scenes, err := h.processor.Develop(ctx, job.Concept, job.Options)
	if err != nil {
		return errorResponse(job.ID, err)
	}
	md := script.ExtractMetadata(text, scenes)
	h.dumpManifest(job.ID, md, scenes)
	resp := Response{
		JobID:      job.ID,
		Status:     "ok",
		ScriptText: text,
		Metadata:   &md,
		Scenes:     scenes,
	}
	if job.Options.VideosWanted() {
		start := time.Now()
		resp.Results = h.coord.ProcessBatch(ctx, scenes)
		resp.TotalTime = time.Since(start).Seconds()
	}
	return resp
}

func (h *Handler) singleScene(ctx context.Context, job Job) Response {
	sc, err := scene.Decode(job.Scene)
	if err != nil {
		return errorResponse(job.ID, err)
	}
	return Response{
		JobID:   job.ID,
		Status:  "ok",
		Results: []coordinator.Result{h.coord.ProcessScene(ctx, sc)},
	}
}

// batchScenes decodes each scene independently; a scene that does not even
// decode still gets its slot in the results.
func (h *Handler) batchScenes(ctx context.Context, job Job) Response {
	if len(job.Scenes) == 0 {
		return errorResponse(job.ID, fmt.Errorf("jobs: batch without scenes"))
	}

	scenes := make([]scene.Scene, len(job.Scenes))
	for i, raw := range job.Scenes {
		sc, err := scene.Decode(raw)
		if err != nil {
			log.Printf("[!] Job %s: scene %d rejected: %v", job.ID, i, err)
			// Leave the zero Scene; the coordinator fails it in place.
			sc = scene.Scene{ID: fmt.Sprintf("scene_%03d", i+1)}
		}
		scenes[i] = sc
	}

	start := time.Now()
	results := h.coord.ProcessBatch(ctx, scenes)
	return Response{
		JobID:     job.ID,
		Status:    "ok",
		Results:   results,
		TotalTime: time.Since(start).Seconds(),
	}
}

func errorResponse(jobID string, err error) Response {
	log.Printf("[!] Job %s rejected: %v", jobID, err)
	return Response{JobID: jobID, Status: "error", Error: err.Error()}
}
