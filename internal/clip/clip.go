// Package clip holds decoded video as in-memory RGBA frame sequences, the
// unit the blender and the ffmpeg encoder work on.
package clip

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Clip is an ordered frame sequence at a fixed rate. All frames share one
// geometry.
type Clip struct {
	Frames []*image.RGBA
	FPS    int
	Width  int
	Height int
}

// New allocates an empty clip with capacity for n frames.
func New(w, h, fps, n int) *Clip {
	return &Clip{
		Frames: make([]*image.RGBA, 0, n),
		FPS:    fps,
		Width:  w,
		Height: h,
	}
}

// Len returns the frame count.
func (c *Clip) Len() int { return len(c.Frames) }

// Seconds returns the playback duration.
func (c *Clip) Seconds() float64 {
	if c.FPS == 0 {
		return 0
	}
	return float64(len(c.Frames)) / float64(c.FPS)
}

// Append adds a frame, rescaling it first if its geometry differs from the
// clip's. Independently generated segments do not always agree on exact
// output size.
func (c *Clip) Append(frame *image.RGBA) {
	if frame.Bounds().Dx() != c.Width || frame.Bounds().Dy() != c.Height {
		frame = Rescale(frame, c.Width, c.Height)
	}
	c.Frames = append(c.Frames, frame)
}

// Rescale resamples a frame to the target geometry.
func Rescale(src *image.RGBA, w, h int) *image.RGBA {
	dst := GetFrame(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Release returns all frames to the pool. The clip must not be used after.
func (c *Clip) Release() {
	for _, f := range c.Frames {
		PutFrame(f)
	}
	c.Frames = nil
}

func (c *Clip) String() string {
	return fmt.Sprintf("clip %dx%d @%dfps, %d frames", c.Width, c.Height, c.FPS, len(c.Frames))
}
