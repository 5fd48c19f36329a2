package clip

import (
	"image"
	"sync"
)

// framePool reuses *image.RGBA buffers keyed by geometry to keep GC
// pressure down while decoding and blending long clips.
type framePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = &framePool{
	pools: make(map[string]*sync.Pool),
}

// GetFrame returns a pooled *image.RGBA for the rectangle, allocating one
// when the pool is empty.
func GetFrame(rect image.Rectangle) *image.RGBA {
	return globalPool.get(rect)
}

// PutFrame returns a frame to the pool for reuse.
func PutFrame(img *image.RGBA) {
	globalPool.put(img)
}

func (p *framePool) get(rect image.Rectangle) *image.RGBA {
	key := rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return image.NewRGBA(rect)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *framePool) put(img *image.RGBA) {
	if img == nil {
		return
	}
	key := img.Rect.String()
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
