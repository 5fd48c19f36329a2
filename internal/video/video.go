// Package video moves clips across the ffmpeg boundary: encoding
// in-memory frame sequences to files and decoding generated artifacts
// back into frames for blending.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/clip"
)

// Encoder writes clips to disk and reads media files back into clips.
type Encoder interface {
	EncodeClip(ctx context.Context, c *clip.Clip, videoPath string) error
	DecodeClip(ctx context.Context, videoPath string, width, height, fps int) (*clip.Clip, error)
}

// FFmpegEncoder drives the system ffmpeg over rawvideo pipes, avoiding
// intermediate image files entirely.
type FFmpegEncoder struct {
	EncoderName string // h264_videotoolbox, h264_nvenc or libx264
	Quality     int
}

func (e *FFmpegEncoder) EncodeClip(ctx context.Context, c *clip.Clip, videoPath string) error {
	if c.Len() == 0 {
		return fmt.Errorf("video: empty clip")
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", c.Width, c.Height),
		"-framerate", fmt.Sprintf("%d", c.FPS),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", e.EncoderName,
	}
	args = append(args, e.qualityArgs()...)
	args = append(args, videoPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("video: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("video: ffmpeg start: %w", err)
	}

	for i, frame := range c.Frames {
		if err := writeRawRGBA(stdin, frame); err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("video: write frame %d: %w", i, err)
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("video: ffmpeg encode: %w\nlog: %s", err, out.String())
	}
	return nil
}

func (e *FFmpegEncoder) qualityArgs() []string {
	switch e.EncoderName {
	case "h264_videotoolbox":
		// VideoToolbox rejects -q:v on several versions; use a bitrate.
		return []string{"-b:v", fmt.Sprintf("%dk", e.Quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", e.Quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", e.Quality), "-preset", "medium"}
	}
}

// DecodeClip reads a media file into frames, scaled to the requested
// geometry and rate so segments from different back-ends line up.
func (e *FFmpegEncoder) DecodeClip(ctx context.Context, videoPath string, width, height, fps int) (*clip.Clip, error) {
	args := []string{
		"-i", videoPath,
		"-vf", fmt.Sprintf("scale=%d:%d,fps=%d", width, height, fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("video: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("video: ffmpeg start: %w", err)
	}

	out := clip.New(width, height, fps, 0)

	for {
		frame := clip.GetFrame(image.Rect(0, 0, width, height))
		_, err := io.ReadFull(stdout, frame.Pix)
		if err == io.EOF {
			clip.PutFrame(frame)
			break
		}
		if err == io.ErrUnexpectedEOF {
			// Trailing partial frame; ffmpeg flushed mid-write.
			clip.PutFrame(frame)
			break
		}
		if err != nil {
			clip.PutFrame(frame)
			cmd.Wait()
			return nil, fmt.Errorf("video: read frame %d: %w", out.Len(), err)
		}
		out.Append(frame)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("video: ffmpeg decode: %w\nlog: %s", err, errBuf.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("video: no frames decoded from %s", videoPath)
	}
	return out, nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride == bounds.Dx()*4 && bounds.Min.X == 0 && bounds.Min.Y == 0 {
		_, err := w.Write(img.Pix)
		return err
	}
	// Non-standard stride: copy row by row.
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride : (y-bounds.Min.Y)*img.Stride+bounds.Dx()*4]
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
