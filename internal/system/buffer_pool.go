package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы экспорт
// длинной анимации не нагружал GC.
type ImagePool struct {
	mu     sync.RWMutex
	pools  map[image.Point]*sync.Pool
	allocs atomic.Int64
}

// NewImagePool создает пустой пул.
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage возвращает кадр из общего пула.
func GetImage(w, h int) *image.RGBA {
	return globalPool.Get(w, h)
}

// PutImage возвращает кадр в общий пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()
	if exists {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Double check
	if pool, exists = p.pools[size]; exists {
		return pool
	}
	pool = &sync.Pool{
		New: func() any {
			p.allocs.Add(1)
			return image.NewRGBA(image.Rectangle{Max: size})
		},
	}
	p.pools[size] = pool
	return pool
}

// Get возвращает кадр w×h из пула или создает новый. Содержимое не очищается,
// это делает вызывающий код.
func (p *ImagePool) Get(w, h int) *image.RGBA {
	return p.pool(image.Pt(w, h)).Get().(*image.RGBA)
}

// Put возвращает кадр в пул. Кадры с ненулевым началом координат отбрасываются.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Min != (image.Point{}) {
		return
	}
	p.pool(img.Rect.Max).Put(img)
}

// Allocations сообщает, сколько кадров пулу пришлось выделить.
func (p *ImagePool) Allocations() int64 {
	return p.allocs.Load()
}
