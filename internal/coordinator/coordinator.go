// Package coordinator drives generation for scenes: video through the
// ordered back-end chain, audio per modality, optional lip-sync, and the
// final composite. A scene failure never escapes its Result.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/backend"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/blend"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/clip"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/compose"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/config"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/scene"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/tier"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/video"
	"github.com/google/uuid"
)

// State tracks where a scene is in its lifecycle. Transitions are logged;
// the terminal state lands in the Result.
type State int

const (
	StatePending State = iota
	StateGeneratingVideo
	StateGeneratingAudio
	StateLipSync
	StateCompositing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateGeneratingVideo:
		return "generating_video"
	case StateGeneratingAudio:
		return "generating_audio"
	case StateLipSync:
		return "lip_sync"
	case StateCompositing:
		return "compositing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the per-scene outcome. Audio maps modality names (dialogue,
// music, sfx, human_sounds) to artifact paths. A non-empty Err means the
// scene failed; batch processing still returns the Result.
type Result struct {
	SceneID        string              `json:"scene_id"`
	State          string              `json:"state"`
	VideoPath      string              `json:"video_path,omitempty"`
	Audio          map[string][]string `json:"audio,omitempty"`
	ProcessingTime float64             `json:"processing_time"`
	Err            string              `json:"error,omitempty"`
}

// Coordinator holds the run-wide pieces: configuration, the tier spec, the
// model set and the encoder. It is safe for concurrent ProcessScene calls.
type Coordinator struct {
	cfg    config.Config
	spec   tier.Spec
	models *backend.ModelSet
	enc    video.Encoder

	// composite is compose.Composite unless a test swaps it out.
	composite func(ctx context.Context, videoPath string, t compose.Tracks, outPath, encoderName string, quality int) error
}

func New(cfg config.Config, spec tier.Spec, models *backend.ModelSet, enc video.Encoder) *Coordinator {
	return &Coordinator{cfg: cfg, spec: spec, models: models, enc: enc, composite: compose.Composite}
}

// ProcessScene runs one scene end to end and always returns a Result. A
// panicking back-end fails its scene, not the batch.
func (c *Coordinator) ProcessScene(ctx context.Context, sc scene.Scene) (res Result) {
	start := time.Now()
	res = Result{SceneID: sc.ID, Audio: map[string][]string{}}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[!] %s panicked: %v", sc.ID, r)
			res.State = StateFailed.String()
			res.Err = fmt.Sprintf("panic: %v", r)
			res.ProcessingTime = time.Since(start).Seconds()
		}
	}()

	fail := func(err error) Result {
		log.Printf("[!] %s failed: %v", sc.ID, err)
		res.State = StateFailed.String()
		res.Err = err.Error()
		res.ProcessingTime = time.Since(start).Seconds()
		return res
	}

	if err := sc.Validate(); err != nil {
		return fail(err)
	}
	log.Printf("[>] %s: %s (%.1fs, %s)", sc.ID, StatePending, sc.Duration, sc.Resolution)

	var videoPath string
	var tracks compose.Tracks

	if c.spec.Concurrent {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Printf("[>] %s: %s", sc.ID, StateGeneratingVideo)
			var err error
			videoPath, err = c.generateVideo(gctx, sc)
			return err
		})
		g.Go(func() error {
			log.Printf("[>] %s: %s", sc.ID, StateGeneratingAudio)
			tracks = c.generateAudio(gctx, sc, res.Audio)
			return nil
		})
		if err := g.Wait(); err != nil {
			return fail(err)
		}
	} else {
		log.Printf("[>] %s: %s", sc.ID, StateGeneratingVideo)
		var err error
		videoPath, err = c.generateVideo(ctx, sc)
		if err != nil {
			return fail(err)
		}
		c.models.Reclaim(ctx)

		log.Printf("[>] %s: %s", sc.ID, StateGeneratingAudio)
		tracks = c.generateAudio(ctx, sc, res.Audio)
		if c.spec.ClearCache {
			c.models.Reclaim(ctx)
		}
	}

	if c.models.LipSync != nil && tracks.Dialogue != "" {
		log.Printf("[>] %s: %s", sc.ID, StateLipSync)
		synced, err := c.models.LipSync.Apply(ctx, videoPath, tracks.Dialogue)
		if err != nil {
			// Lip-sync is best effort; dialogue still lands in the mix.
			log.Printf("[!] %s: lip-sync skipped: %v", sc.ID, err)
		} else {
			videoPath = synced
		}
	}

	log.Printf("[>] %s: %s", sc.ID, StateCompositing)
	outPath := filepath.Join(c.cfg.OutputDir, sc.ID+"_final.mp4")
	if err := c.composite(ctx, videoPath, tracks, outPath, c.cfg.VideoEncoder, c.cfg.Quality); err != nil {
		return fail(err)
	}

	res.State = StateDone.String()
	res.VideoPath = outPath
	res.ProcessingTime = time.Since(start).Seconds()
	log.Printf("[*] %s: done in %.1fs -> %s", sc.ID, res.ProcessingTime, outPath)
	return res
}

// ProcessBatch runs scenes with per-scene isolation: a failed scene fills
// its Result and the rest keep going. Under concurrent tiers at most two
// scenes run at once; sequential tiers process one by one.
func (c *Coordinator) ProcessBatch(ctx context.Context, scenes []scene.Scene) []Result {
	results := make([]Result, len(scenes))

	if !c.spec.Concurrent {
		for i, sc := range scenes {
			results[i] = c.ProcessScene(ctx, sc)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for i, sc := range scenes {
		i, sc := i, sc
		g.Go(func() error {
			results[i] = c.ProcessScene(gctx, sc)
			return nil
		})
	}
	g.Wait()
	return results
}

// generateVideo walks the candidate chain in order and returns the first
// successful artifact. Every candidate failure is recorded; the joined
// error surfaces only when the whole chain is exhausted.
func (c *Coordinator) generateVideo(ctx context.Context, sc scene.Scene) (string, error) {
	width, height, err := config.ResolutionSize(sc.Resolution)
	if err != nil {
		return "", err
	}

	type attempt struct {
		name string
		run  func() (*clip.Clip, error)
	}
	direct := func(b backend.VideoBackend) func() (*clip.Clip, error) {
		return func() (*clip.Clip, error) {
			return b.Generate(ctx, backend.VideoRequest{
				Prompt:   videoPrompt(sc),
				Seconds:  sc.Duration,
				Width:    width,
				Height:   height,
				FPS:      sc.FPS,
				Artifact: sc.ID + "_" + shortID(),
			})
		}
	}

	var attempts []attempt
	if fast, err := c.models.VideoByName(tier.BackendFast); err == nil {
		switch {
		case sc.Duration <= fast.MaxSeconds():
			attempts = append(attempts, attempt{"fast single shot", direct(fast)})
		case sc.Duration <= c.cfg.ExtendedMax:
			attempts = append(attempts, attempt{"segment and blend", func() (*clip.Clip, error) {
				return c.generateExtended(ctx, fast, sc, width, height)
			}})
		}
	}
	if hi, err := c.models.VideoByName(tier.BackendHighFidelity); err == nil {
		attempts = append(attempts, attempt{"high fidelity", direct(hi)})
	}
	if fb, err := c.models.VideoByName(tier.BackendFallback); err == nil {
		attempts = append(attempts, attempt{"fallback", direct(fb)})
	}
	if len(attempts) == 0 {
		return "", fmt.Errorf("coordinator: no video back-end can take %s", sc.ID)
	}

	var errs []error
	for _, a := range attempts {
		cl, err := a.run()
		if err != nil {
			log.Printf("[!] %s: %s failed: %v", sc.ID, a.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
			continue
		}

		path := filepath.Join(c.cfg.TempDir, fmt.Sprintf("%s_%s.mp4", sc.ID, shortID()))
		err = c.enc.EncodeClip(ctx, cl, path)
		cl.Release()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.name, err))
			continue
		}
		log.Printf("[*] %s: video generated via %s", sc.ID, a.name)
		return path, nil
	}
	return "", errors.Join(errs...)
}

// generateExtended produces a long take as shot-sized segments blended
// with a crossfade. Non-final segments are generated with the overlap
// window appended so the blended clip keeps the scene's nominal length.
func (c *Coordinator) generateExtended(ctx context.Context, fast backend.VideoBackend, sc scene.Scene, width, height int) (*clip.Clip, error) {
	segments := scene.Split(sc, c.spec.MaxSegmentSeconds)
	clips := make([]*clip.Clip, 0, len(segments))
	release := func() {
		for _, cl := range clips {
			cl.Release()
		}
	}

	for i, seg := range segments {
		seconds := seg.Duration
		if i < len(segments)-1 {
			seconds += c.cfg.OverlapSec
		}
		cl, err := fast.Generate(ctx, backend.VideoRequest{
			Prompt:   fmt.Sprintf("%s, %s", seg.Prompt, seg.Camera),
			Seconds:  seconds,
			Width:    width,
			Height:   height,
			FPS:      sc.FPS,
			Artifact: seg.ID + "_" + shortID(),
		})
		if err != nil {
			release()
			return nil, fmt.Errorf("segment %s: %w", seg.ID, err)
		}
		clips = append(clips, cl)
	}

	overlapFrames := int(c.cfg.OverlapSec * float64(sc.FPS))
	out, err := blend.Blend(clips, overlapFrames)
	if err != nil {
		release()
		return nil, err
	}
	log.Printf("[*] %s: blended %d segments, %d frames", sc.ID, len(clips), out.Len())
	return out, nil
}

// videoPrompt is the full prompt for a single-shot generation.
func videoPrompt(sc scene.Scene) string {
	prompt := sc.Description
	if len(sc.CameraMovements) > 0 {
		prompt += ", " + sc.CameraMovements[0]
	} else {
		prompt += ", " + scene.DefaultCamera
	}
	if sc.Environment != "" {
		prompt += ", " + sc.Environment
	}
	if sc.TimeOfDay != "" {
		prompt += ", " + sc.TimeOfDay
	}
	return prompt
}

func shortID() string {
	return uuid.NewString()[:8]
}
