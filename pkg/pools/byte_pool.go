package pools

import (
	"sync"
)

// Buffer size classes
const (
	SmallSize  = 64 << 10 // icons, faces, system images
	MediumSize = 1 << 20  // tilesets, pictures, sound effects
	LargeSize  = 8 << 20  // music and movies
	MaxPool    = LargeSize
)

// BytePool provides size-class based pooling for byte slices.
type BytePool struct {
	small  sync.Pool
	medium sync.Pool
	large  sync.Pool
}

func newClass(size int) sync.Pool {
	return sync.Pool{
		New: func() any {
			b := make([]byte, 0, size)
			return &b
		},
	}
}

// NewBytePool creates an empty byte pool
func NewBytePool() *BytePool {
	return &BytePool{
		small:  newClass(SmallSize),
		medium: newClass(MediumSize),
		large:  newClass(LargeSize),
	}
}

// class returns the pool serving buffers of the given capacity, or nil
// when the size is not pooled
func (p *BytePool) class(size int) *sync.Pool {
	switch {
	case size <= SmallSize:
		return &p.small
	case size <= MediumSize:
		return &p.medium
	case size <= LargeSize:
		return &p.large
	default:
		return nil
	}
}

// Get returns a byte slice with length 0 and at least the requested
// capacity.
func (p *BytePool) Get(size int) []byte {
	pool := p.class(size)
	if pool == nil {
		return make([]byte, 0, size)
	}

	bp, ok := pool.Get().(*[]byte)
	if !ok || cap(*bp) < size {
		return make([]byte, 0, size)
	}
	return (*bp)[:0]
}

// Put returns a byte slice to the pool. Slices larger than MaxPool are
// dropped.
func (p *BytePool) Put(b []byte) {
	c := cap(b)
	if c > MaxPool {
		return
	}
	// A buffer goes back to the largest class it can fully serve
	var pool *sync.Pool
	switch {
	case c >= LargeSize:
		pool = &p.large
	case c >= MediumSize:
		pool = &p.medium
	case c >= SmallSize:
		pool = &p.small
	default:
		return
	}

	b = b[:0]
	pool.Put(&b)
}

var defaultBytePool = NewBytePool()

// GetBytes returns a byte slice from the default pool.
func GetBytes(size int) []byte {
	return defaultBytePool.Get(size)
}

// PutBytes returns a byte slice to the default pool.
func PutBytes(b []byte) {
	defaultBytePool.Put(b)
}
