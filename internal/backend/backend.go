// Package backend defines the opaque generative capabilities the pipeline
// drives (video, music, sound effects, speech and lip-sync) and the
// ModelSet value that fixes which of them a run may use.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/clip"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/sounds"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/tier"
)

// ErrUnavailable signals a capability that is not loaded for this run. It
// drives the fallback chain and is only an error once every candidate is
// exhausted.
var ErrUnavailable = errors.New("backend: capability unavailable")

// VideoRequest is one video generation call.
type VideoRequest struct {
	Prompt   string
	Seconds  float64
	Width    int
	Height   int
	FPS      int
	Artifact string // id used to name the output
}

// VideoBackend renders a clip of the requested duration from a prompt.
type VideoBackend interface {
	Name() string
	MaxSeconds() float64
	Generate(ctx context.Context, req VideoRequest) (*clip.Clip, error)
}

// MusicBackend renders a music track, returning the artifact path.
type MusicBackend interface {
	GenerateMusic(ctx context.Context, prompt string, seconds float64, artifact string) (string, error)
}

// SFXBackend renders one named sound effect or human-sound cue.
type SFXBackend interface {
	GenerateSFX(ctx context.Context, prompt string, seconds float64, artifact string) (string, error)
}

// SpeechBackend synthesizes one dialogue line, optionally cloning a voice
// reference sample.
type SpeechBackend interface {
	Speak(ctx context.Context, text, emotion, voiceSample, artifact string) (string, error)
}

// LipSyncer re-renders a video's face motion against a dialogue track.
type LipSyncer interface {
	Apply(ctx context.Context, videoPath, audioPath string) (string, error)
}

// ModelSet is the explicit, run-wide capability set selected once per
// tier. Nothing reloads or mutates it mid-run.
type ModelSet struct {
	Video    []VideoBackend // candidate order matters: fast, high fidelity, fallback
	Music    MusicBackend
	SFX      SFXBackend
	Speech   SpeechBackend
	LipSync  LipSyncer // nil when no lip-sync capability is loaded
	reclaims []func(ctx context.Context) error
}

// VideoByName returns the named back-end, or ErrUnavailable.
func (m *ModelSet) VideoByName(name string) (VideoBackend, error) {
	for _, v := range m.Video {
		if v.Name() == name {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: video back-end %q", ErrUnavailable, name)
}

// Loaded lists the capability names for health reporting.
func (m *ModelSet) Loaded() []string {
	var names []string
	for _, v := range m.Video {
		names = append(names, "video:"+v.Name())
	}
	if m.Music != nil {
		names = append(names, "music")
	}
	if m.SFX != nil {
		names = append(names, "sfx")
	}
	if m.Speech != nil {
		names = append(names, "speech")
	}
	if m.LipSync != nil {
		names = append(names, "lipsync")
	}
	return names
}

// Reclaim is the explicit memory-reclaim point used between sequential
// video and audio phases under low-resource tiers.
func (m *ModelSet) Reclaim(ctx context.Context) {
	for _, f := range m.reclaims {
		if err := f(ctx); err != nil {
			log.Printf("[!] Memory reclaim failed: %v", err)
		}
	}
}

// New builds the ModelSet a tier allows, backed by the remote inference
// service at baseURL.
func New(spec tier.Spec, baseURL, outputDir string) *ModelSet {
	inv := newInvoker(baseURL, outputDir)

	ms := &ModelSet{
		Music:    &remoteMusic{inv: inv},
		SFX:      &remoteSFX{inv: inv},
		Speech:   &remoteSpeech{inv: inv},
		reclaims: []func(ctx context.Context) error{inv.clearCache},
	}

	for _, name := range spec.VideoBackends {
		switch name {
		case tier.BackendFast:
			ms.Video = append(ms.Video, &remoteVideo{inv: inv, name: name, maxSeconds: 5})
		case tier.BackendHighFidelity:
			ms.Video = append(ms.Video, &remoteVideo{inv: inv, name: name, maxSeconds: 30})
		case tier.BackendFallback:
			ms.Video = append(ms.Video, &remoteVideo{inv: inv, name: name, maxSeconds: 8})
		}
	}

	return ms
}

// EnableLipSync attaches the optional lip-sync capability.
func (m *ModelSet) EnableLipSync(baseURL, outputDir string) {
	m.LipSync = &remoteLipSync{inv: newInvoker(baseURL, outputDir)}
}

// SoundPrompt re-exports the cue prompt builder so coordinator code only
// deals with one package for generation inputs.
func SoundPrompt(h sounds.HumanSound) string { return sounds.Prompt(h) }
