package internal

import (
	"bytes"
	"sync"
)

// ListPool is a pool of reusable slices with a preallocated capacity.
type ListPool[T any] struct {
	pool sync.Pool
}

// NewListPool returns a ListPool whose slices are created with the capacity passed.
func NewListPool[T any](capacity int) *ListPool[T] {
	return &ListPool[T]{pool: sync.Pool{
		New: func() interface{} {
			s := make([]T, 0, capacity)
			return &s
		},
	}}
}

// Get retrieves an empty slice from the pool.
func (p *ListPool[T]) Get() *[]T {
	list := p.pool.Get().(*[]T)
	*list = (*list)[:0]
	return list
}

// Put returns a slice to the pool. Elements are cleared so the pool does not keep
// references alive.
func (p *ListPool[T]) Put(list *[]T) {
	if list == nil {
		return
	}
	clear((*list)[:cap(*list)])
	*list = (*list)[:0]
	p.pool.Put(list)
}

// BufferPool is a pool of reusable byte buffers used while encoding and decoding events.
var BufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 64))
	},
}
