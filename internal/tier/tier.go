// Package tier classifies a run by available accelerator memory and fixes
// the generation strategy for its lifetime: which video back-ends are
// enabled, whether a scene's video and audio phases run concurrently, and
// the maximum single-shot segment duration.
package tier

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
)

type Tier int

const (
	None Tier = iota
	Low
	Medium
	High
)

func (t Tier) String() string {
	switch t {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "none"
	}
}

// Spec is the run-wide configuration contract a tier implies. It is built
// once at pipeline start and read-only afterwards; the coordinator
// consumes it, nothing loads models here.
type Spec struct {
	Tier              Tier
	VideoBackends     []string // enabled back-ends, primary first
	Concurrent        bool     // video+audio issued concurrently per scene
	MaxSegmentSeconds float64
	ClearCache        bool // explicit memory reclaim between phases
}

// Back-end names follow the model roster the inference service exposes.
const (
	BackendFast         = "ltx"
	BackendHighFidelity = "hunyuan"
	BackendFallback     = "fallback"
)

// Select classifies available accelerator memory into a tier. Thresholds:
// >=80 GB high, 40-79 GB medium, <40 GB low. Zero or negative memory means
// no accelerator was detected.
func Select(availableMemGB float64) Spec {
	switch {
	case availableMemGB >= 80:
		return Spec{
			Tier:              High,
			VideoBackends:     []string{BackendFast, BackendHighFidelity, BackendFallback},
			Concurrent:        true,
			MaxSegmentSeconds: 8,
		}
	case availableMemGB >= 40:
		return Spec{
			Tier:              Medium,
			VideoBackends:     []string{BackendFast, BackendFallback},
			Concurrent:        true,
			MaxSegmentSeconds: 8,
		}
	case availableMemGB > 0:
		return Spec{
			Tier:              Low,
			VideoBackends:     []string{BackendFast},
			Concurrent:        false,
			MaxSegmentSeconds: 5,
			ClearCache:        true,
		}
	default:
		log.Printf("[!] No accelerator detected, generation will be extremely slow")
		return Spec{
			Tier:              None,
			VideoBackends:     []string{BackendFallback},
			Concurrent:        false,
			MaxSegmentSeconds: 5,
			ClearCache:        true,
		}
	}
}

// DetectAcceleratorGB probes total accelerator memory via nvidia-smi.
// Returns 0 when no accelerator (or no driver) is present.
func DetectAcceleratorGB() float64 {
	out, err := exec.Command("nvidia-smi",
		"--query-gpu=memory.total", "--format=csv,noheader,nounits").CombinedOutput()
	if err != nil {
		return 0
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	mib, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0
	}
	return mib / 1024
}

// HostReport returns a one-line host memory summary for startup logs and
// health checks.
func HostReport() string {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "host memory: unknown"
	}
	return fmt.Sprintf("host memory: %.1fGB total, %.1fGB available",
		float64(vm.Total)/(1<<30), float64(vm.Available)/(1<<30))
}
