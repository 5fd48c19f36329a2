// Package config carries the runtime configuration of the worker and the
// per-job generation options.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is process-wide runtime configuration, loaded once at startup
// from an optional YAML file with environment overrides.
type Config struct {
	RedisAddr     string  `yaml:"redis_addr"`
	JobQueue      string  `yaml:"job_queue"`
	InferenceURL  string  `yaml:"inference_url"`
	LLMAPIKey     string  `yaml:"-"`
	LLMBaseURL    string  `yaml:"llm_base_url"`
	LLMModel      string  `yaml:"llm_model"`
	OutputDir     string  `yaml:"output_dir"`
	TempDir       string  `yaml:"temp_dir"`
	VideoEncoder  string  `yaml:"video_encoder"`
	Quality       int     `yaml:"quality"`
	OverlapSec    float64 `yaml:"overlap_seconds"`
	ExtendedMax   float64 `yaml:"extended_max_seconds"`
	LipSyncActive bool    `yaml:"lip_sync"`
}

// Default returns the configuration the worker runs with when nothing is
// provided.
func Default() Config {
	return Config{
		RedisAddr:    "localhost:6379",
		JobQueue:     "q_cinema_jobs",
		InferenceURL: "http://localhost:8188",
		LLMBaseURL:   "https://api.deepseek.com/v1",
		LLMModel:     "deepseek-chat",
		OutputDir:    "output",
		Quality:      23,
		OverlapSec:   2,
		ExtendedMax:  30,
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides for deployment-varying values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("INFERENCE_URL"); v != "" {
		cfg.InferenceURL = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("DEEPSEEK_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}

	return cfg, nil
}

// Options are the per-job generation options recognized on every payload.
type Options struct {
	MaxSceneDuration int    `json:"max_scene_duration,omitempty"`
	Resolution       string `json:"resolution,omitempty"`
	FPS              int    `json:"fps,omitempty"`
	GenerateVideos   *bool  `json:"generate_videos,omitempty"`
}

// Normalize fills defaults and validates the resolution enum.
func (o *Options) Normalize() error {
	if o.MaxSceneDuration <= 0 {
		o.MaxSceneDuration = 30
	}
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.Resolution == "" {
		o.Resolution = "720p"
	}
	if _, _, err := ResolutionSize(o.Resolution); err != nil {
		return err
	}
	return nil
}

// VideosWanted reports whether the concept flow should run generation
// after developing the script. Defaults to true.
func (o *Options) VideosWanted() bool {
	return o.GenerateVideos == nil || *o.GenerateVideos
}

var resolutions = map[string][2]int{
	"480p":  {848, 480},
	"540p":  {960, 540},
	"720p":  {1280, 720},
	"1080p": {1920, 1080},
	"4k":    {3840, 2160},
}

// ResolutionSize maps the resolution enum to pixel dimensions.
func ResolutionSize(res string) (width, height int, err error) {
	if wh, ok := resolutions[res]; ok {
		return wh[0], wh[1], nil
	}
	return 0, 0, fmt.Errorf("config: unknown resolution %q", res)
}
