// Package compose mixes a scene's audio artifacts onto its video. The
// overlay order is fixed and defines the final mix semantics: the base
// video's audio is replaced by the dialogue track, music is layered under
// it at reduced level, and sound effects are mixed in at full level.
package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MusicLevel is the relative volume of the background music layer.
const MusicLevel = 0.3

// Tracks are the audio artifacts available for one scene. Empty paths mean
// the modality was not generated.
type Tracks struct {
	Dialogue string
	Music    string
	SFX      []string
}

func (t Tracks) empty() bool {
	return t.Dialogue == "" && t.Music == "" && len(t.SFX) == 0
}

// Composite writes the final scene video: videoPath plus the tracks, mixed
// in the fixed order, encoded with the given encoder settings.
func Composite(ctx context.Context, videoPath string, t Tracks, outPath, encoderName string, quality int) error {
	if t.empty() {
		// Nothing to mix; keep the video stream as-is.
		cmd := exec.CommandContext(ctx, "ffmpeg", "-y", "-i", videoPath, "-c", "copy", outPath)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("compose: copy: %v, output: %s", err, string(out))
		}
		return nil
	}

	if t.Dialogue != "" && t.Music == "" && len(t.SFX) == 0 {
		// Dialogue is the only track: plain remux, no filter graph.
		return ReplaceAudio(ctx, videoPath, t.Dialogue, outPath)
	}

	args := []string{"-y", "-i", videoPath}
	inputs := 1
	addInput := func(path string) int {
		args = append(args, "-i", path)
		inputs++
		return inputs - 1
	}

	var dialogueIdx, musicIdx int = -1, -1
	var sfxIdx []int
	if t.Dialogue != "" {
		dialogueIdx = addInput(t.Dialogue)
	}
	if t.Music != "" {
		musicIdx = addInput(t.Music)
	}
	for _, p := range t.SFX {
		sfxIdx = append(sfxIdx, addInput(p))
	}

	filterGraph, audioOut := MixFilter(dialogueIdx, musicIdx, sfxIdx)

	if filterGraph != "" {
		args = append(args, "-filter_complex", filterGraph)
	}
	args = append(args, "-map", "0:v", "-map", audioOut)

	args = append(args, "-c:v", encoderName, "-pix_fmt", "yuv420p")
	switch encoderName {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default:
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}
	args = append(args, "-c:a", "aac", "-shortest", outPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("compose: mix: %v, output: %s", err, string(out))
	}
	return nil
}

// MixFilter builds the filter_complex graph for the overlay order. Indexes
// are ffmpeg input positions, -1 meaning absent. Returns the graph and the
// label/stream to map as audio output.
func MixFilter(dialogueIdx, musicIdx int, sfxIdx []int) (graph, audioOut string) {
	var parts []string
	var mixInputs []string

	if dialogueIdx >= 0 {
		parts = append(parts, fmt.Sprintf("[%d:a]volume=1.0[dlg]", dialogueIdx))
		mixInputs = append(mixInputs, "[dlg]")
	}
	if musicIdx >= 0 {
		parts = append(parts, fmt.Sprintf("[%d:a]volume=%.2f[bgm]", musicIdx, MusicLevel))
		mixInputs = append(mixInputs, "[bgm]")
	}
	for i, idx := range sfxIdx {
		label := fmt.Sprintf("[fx%d]", i)
		parts = append(parts, fmt.Sprintf("[%d:a]volume=1.0%s", idx, label))
		mixInputs = append(mixInputs, label)
	}

	if len(mixInputs) == 1 {
		// Single track, no mixing needed.
		switch {
		case dialogueIdx >= 0:
			return "", fmt.Sprintf("%d:a", dialogueIdx)
		case musicIdx >= 0:
			return strings.Join(parts, ";") + ";[bgm]anull[aout]", "[aout]"
		default:
			return "", fmt.Sprintf("%d:a", sfxIdx[0])
		}
	}

	parts = append(parts, fmt.Sprintf("%samix=inputs=%d:duration=first:normalize=0:dropout_transition=3[aout]",
		strings.Join(mixInputs, ""), len(mixInputs)))
	return strings.Join(parts, ";"), "[aout]"
}

// ConcatWAVs joins per-line dialogue files in order into one track using
// the concat demuxer.
func ConcatWAVs(ctx context.Context, paths []string, tmpDir, outPath string) error {
	if len(paths) == 0 {
		return fmt.Errorf("compose: no audio inputs")
	}
	if len(paths) == 1 {
		data, err := os.ReadFile(paths[0])
		if err != nil {
			return err
		}
		return os.WriteFile(outPath, data, 0644)
	}

	listPath, err := writeConcatList(tmpDir, paths)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0", "-i", listPath,
		"-c", "copy", outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("compose: concat: %v, output: %s", err, string(out))
	}
	return nil
}

// writeConcatList writes a uniquely named demuxer list so concurrent
// scenes cannot clobber each other's inputs.
func writeConcatList(tmpDir string, paths []string) (string, error) {
	f, err := os.CreateTemp(tmpDir, "concat_*.txt")
	if err != nil {
		return "", err
	}
	defer f.Close()

	for _, p := range paths {
		absPath, _ := filepath.Abs(p)
		if _, err := fmt.Fprintf(f, "file '%s'\n", absPath); err != nil {
			return "", err
		}
	}
	return f.Name(), nil
}

// ReplaceAudio muxes a new audio track onto a video, dropping the old one.
// Composite calls it directly when dialogue is the only track.
func ReplaceAudio(ctx context.Context, videoPath, audioPath, outPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoPath, "-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c:v", "copy", "-c:a", "aac", "-shortest",
		outPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("compose: replace audio: %v, output: %s", err, string(out))
	}
	return nil
}
