package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы
// рендер тысяч кадров не нагружал GC.
type ImagePool struct {
	mu       sync.RWMutex
	pools    map[image.Point]*sync.Pool
	created  atomic.Int64
	recycled atomic.Int64
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage возвращает кадр размера rect из общего пула. Содержимое
// переиспользованного кадра не очищается.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает кадр в общий пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// PoolStats сообщает, сколько кадров создано и сколько выдано повторно.
func PoolStats() (created, recycled int64) {
	return globalPool.created.Load(), globalPool.recycled.Load()
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()
	if ok {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool, ok = p.pools[size]; ok {
		return pool
	}
	pool = &sync.Pool{}
	p.pools[size] = pool
	return pool
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	pool := p.pool(rect.Size())
	if v := pool.Get(); v != nil {
		img := v.(*image.RGBA)
		img.Rect = rect
		p.recycled.Add(1)
		return img
	}
	p.created.Add(1)
	return image.NewRGBA(rect)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}
