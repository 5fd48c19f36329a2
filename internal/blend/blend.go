// Package blend stitches independently generated video segments into one
// continuous clip. Adjacent segments share an overlap window representing
// the same time span; the blender linearly crossfades across it.
package blend

import (
	"fmt"
	"image"

	"github.com/Flickinny11/cinema-ai-production-complete/internal/clip"
)

// PreconditionError reports an overlap window at least as long as the
// shortest segment. Blending such input is undefined; the caller must not
// expect silent truncation.
type PreconditionError struct {
	OverlapFrames   int
	ShortestSegment int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("blend: overlap of %d frames >= shortest segment of %d frames",
		e.OverlapFrames, e.ShortestSegment)
}

// Blend joins segments with a linear crossfade over overlapFrames at each
// boundary. For frame j in [0, overlap) the output is
// (1-j/overlap)*previous + (j/overlap)*next. The first segment keeps
// everything but its trailing overlap untouched, the last everything but
// its leading overlap, and interior segments contribute only their
// middles. Total output length is sum(len) - overlap*(n-1).
//
// A single segment is returned unchanged. Segment geometries are
// normalized to the first segment's before blending.
func Blend(segments []*clip.Clip, overlapFrames int) (*clip.Clip, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("blend: no segments")
	}
	if overlapFrames < 0 {
		return nil, fmt.Errorf("blend: negative overlap %d", overlapFrames)
	}
	if len(segments) == 1 {
		return segments[0], nil
	}

	shortest := segments[0].Len()
	for _, s := range segments[1:] {
		if s.Len() < shortest {
			shortest = s.Len()
		}
	}
	if overlapFrames >= shortest {
		return nil, &PreconditionError{OverlapFrames: overlapFrames, ShortestSegment: shortest}
	}

	first := segments[0]
	total := 0
	for _, s := range segments {
		total += s.Len()
	}
	total -= overlapFrames * (len(segments) - 1)

	out := clip.New(first.Width, first.Height, first.FPS, total)

	var prev []*image.RGBA
	for i, seg := range segments {
		frames := normalize(seg, first.Width, first.Height)

		if i == 0 {
			for _, f := range frames[:len(frames)-overlapFrames] {
				out.Append(f)
			}
			prev = frames
			continue
		}

		// Crossfade this segment's leading edge into the previous
		// segment's trailing overlap.
		base := len(prev) - overlapFrames
		for j := 0; j < overlapFrames; j++ {
			alpha := float64(j) / float64(overlapFrames)
			out.Append(crossfade(prev[base+j], frames[j], alpha))
		}

		if i == len(segments)-1 {
			for _, f := range frames[overlapFrames:] {
				out.Append(f)
			}
		} else {
			for _, f := range frames[overlapFrames : len(frames)-overlapFrames] {
				out.Append(f)
			}
		}
		prev = frames
	}

	return out, nil
}

func normalize(c *clip.Clip, w, h int) []*image.RGBA {
	if c.Width == w && c.Height == h {
		return c.Frames
	}
	frames := make([]*image.RGBA, len(c.Frames))
	for i, f := range c.Frames {
		frames[i] = clip.Rescale(f, w, h)
	}
	return frames
}

// crossfade produces (1-alpha)*a + alpha*b per channel.
func crossfade(a, b *image.RGBA, alpha float64) *image.RGBA {
	out := clip.GetFrame(a.Bounds())
	for i := range a.Pix {
		out.Pix[i] = uint8(float64(a.Pix[i])*(1-alpha) + float64(b.Pix[i])*alpha + 0.5)
	}
	return out
}
