package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/clip"
	"github.com/Flickinny11/cinema-ai-production-complete/internal/video"
)

// invoker is the shared HTTP client for one inference service. Every
// capability request blocks until the model finishes, so the timeout is
// generous.
type invoker struct {
	baseURL   string
	outputDir string
	client    *http.Client
	dec       *video.FFmpegEncoder
}

func newInvoker(baseURL, outputDir string) *invoker {
	return &invoker{
		baseURL:   baseURL,
		outputDir: outputDir,
		client:    &http.Client{Timeout: 15 * time.Minute},
		dec:       &video.FFmpegEncoder{},
	}
}

// post sends a JSON request and streams the binary response into a file
// under outputDir. Returns the artifact path.
func (inv *invoker) post(ctx context.Context, endpoint string, payload any, artifact string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("backend: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inv.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := inv.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend: %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s", ErrUnavailable, endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("backend: %s: status %d: %s", endpoint, resp.StatusCode, string(msg))
	}

	outPath := filepath.Join(inv.outputDir, artifact)
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("backend: save %s: %w", artifact, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return outPath, nil
}

// clearCache asks the service to drop model caches, then returns freed heap
// to the OS on our side too.
func (inv *invoker) clearCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inv.baseURL+"/cache/clear", nil)
	if err != nil {
		return err
	}
	resp, err := inv.client.Do(req)
	if err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	debug.FreeOSMemory()
	return err
}

type remoteVideo struct {
	inv        *invoker
	name       string
	maxSeconds float64
}

func (v *remoteVideo) Name() string        { return v.name }
func (v *remoteVideo) MaxSeconds() float64 { return v.maxSeconds }

func (v *remoteVideo) Generate(ctx context.Context, req VideoRequest) (*clip.Clip, error) {
	payload := map[string]any{
		"prompt":  req.Prompt,
		"seconds": req.Seconds,
		"width":   req.Width,
		"height":  req.Height,
		"fps":     req.FPS,
	}
	path, err := v.inv.post(ctx, "/generate/video/"+v.name, payload, req.Artifact+".mp4")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	c, err := v.inv.dec.DecodeClip(ctx, path, req.Width, req.Height, req.FPS)
	if err != nil {
		return nil, fmt.Errorf("backend: decode %s output: %w", v.name, err)
	}
	return c, nil
}

type remoteMusic struct {
	inv *invoker
}

func (m *remoteMusic) GenerateMusic(ctx context.Context, prompt string, seconds float64, artifact string) (string, error) {
	payload := map[string]any{"prompt": prompt, "seconds": seconds}
	return m.inv.post(ctx, "/generate/music", payload, artifact+".wav")
}

type remoteSFX struct {
	inv *invoker
}

func (s *remoteSFX) GenerateSFX(ctx context.Context, prompt string, seconds float64, artifact string) (string, error) {
	payload := map[string]any{"prompt": prompt, "seconds": seconds}
	return s.inv.post(ctx, "/generate/sfx", payload, artifact+".wav")
}

type remoteSpeech struct {
	inv *invoker
}

func (s *remoteSpeech) Speak(ctx context.Context, text, emotion, voiceSample, artifact string) (string, error) {
	payload := map[string]any{"text": text, "emotion": emotion}
	if voiceSample != "" {
		payload["voice_sample"] = voiceSample
	}
	return s.inv.post(ctx, "/generate/speech", payload, artifact+".wav")
}

type remoteLipSync struct {
	inv *invoker
}

// Apply uploads the scene video and its dialogue track and receives the
// re-rendered video back.
func (l *remoteLipSync) Apply(ctx context.Context, videoPath, audioPath string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, path := range map[string]string{"video": videoPath, "audio": audioPath} {
		part, err := mw.CreateFormFile(field, filepath.Base(path))
		if err != nil {
			return "", err
		}
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(part, f)
		f.Close()
		if err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.inv.baseURL+"/lipsync", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := l.inv.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("backend: lipsync: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusServiceUnavailable {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: lipsync", ErrUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("backend: lipsync: status %d: %s", resp.StatusCode, string(msg))
	}

	outPath := videoPath[:len(videoPath)-len(filepath.Ext(videoPath))] + "_synced.mp4"
	f, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(outPath)
		return "", err
	}
	return outPath, f.Close()
}
