package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/backend"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/config"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/coordinator"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/jobs"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/script"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/system"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/tier"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/video"
)

func main() {
	system.InitResourceLimits()

	// Deployment secrets usually live in a .env next to the binary.
	godotenv.Load()

	configPtr := flag.String("config", "", "Path to YAML config (optional)")
	jobPtr := flag.String("job", "", "Run a single job from a JSON file and exit")
	redisPtr := flag.String("redis", "", "Redis address override")
	queuePtr := flag.String("queue", "", "Job queue name override")
	outputPtr := flag.String("output", "", "Output directory override")
	gpuPtr := flag.Float64("gpu-gb", -1, "Force accelerator memory in GB (-1 = probe nvidia-smi)")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *redisPtr != "" {
		cfg.RedisAddr = *redisPtr
	}
	if *queuePtr != "" {
		cfg.JobQueue = *queuePtr
	}
	if *outputPtr != "" {
		cfg.OutputDir = *outputPtr
	}
	if cfg.TempDir == "" {
		cfg.TempDir = filepath.Join(cfg.OutputDir, "tmp")
	}
	for _, d := range []string{cfg.OutputDir, cfg.TempDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			log.Fatalf("[-] Cannot create %s: %v", d, err)
		}
	}

	if cfg.VideoEncoder == "" {
		cfg.VideoEncoder = system.GetBestH264Encoder()
	}
	fmt.Printf("[*] Video encoder: %s\n", cfg.VideoEncoder)
	if !system.CheckFilterSupport("amix") {
		log.Printf("[!] ffmpeg build has no amix filter, audio mixing will fail")
	}

	gpuGB := *gpuPtr
	if gpuGB < 0 {
		gpuGB = tier.DetectAcceleratorGB()
	}
	spec := tier.Select(gpuGB)
	fmt.Printf("[*] Capability tier: %s (%.0fGB accelerator), back-ends: %v\n",
		spec.Tier, gpuGB, spec.VideoBackends)
	fmt.Printf("[*] %s\n", tier.HostReport())

	models := backend.New(spec, cfg.InferenceURL, cfg.TempDir)
	if cfg.LipSyncActive {
		models.EnableLipSync(cfg.InferenceURL, cfg.TempDir)
		fmt.Println("[*] Lip-sync enabled")
	}

	processor := script.NewProcessor(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	enc := &video.FFmpegEncoder{EncoderName: cfg.VideoEncoder, Quality: cfg.Quality}
	coord := coordinator.New(cfg, spec, models, enc)
	handler := jobs.NewHandler(processor, coord, models, spec)
	handler.ManifestDir = cfg.OutputDir

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *jobPtr != "" {
		runOnce(ctx, handler, *jobPtr)
		return
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("[-] Redis unreachable at %s: %v", cfg.RedisAddr, err)
	}

	worker := jobs.NewWorker(rdb, cfg.JobQueue, handler)
	if err := worker.Listen(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("[-] Worker stopped: %v", err)
	}
	fmt.Println("[*] Shutting down")
}

// runOnce processes a single job file and prints the response to stdout.
func runOnce(ctx context.Context, handler *jobs.Handler, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("[-] Cannot read job file: %v", err)
	}

	resp := handler.Process(ctx, data)
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("[-] Cannot encode response: %v", err)
	}
	fmt.Println(string(out))

	if resp.Status != "ok" {
		os.Exit(1)
	}
}
