package proto

import "sync"

// bytesPool recycles []byte buffers used for pooled string payloads so
// repeated lazy-string reads don't churn the allocator. Lazily
// initialised, process-wide, no teardown required.
var bytesPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, 4096)
		return &buf
	},
}

// getBytes borrows a buffer with at least the requested capacity.
func getBytes(n int) *[]byte {
	p := bytesPool.Get().(*[]byte)
	if cap(*p) < n {
		*p = make([]byte, 0, n)
	}
	*p = (*p)[:0]
	return p
}

func putBytes(p *[]byte) {
	bytesPool.Put(p)
}

// intsPool recycles int slices used for the offset/length arrays of a
// lazy string column.
var intsPool = sync.Pool{
	New: func() any {
		buf := make([]int, 0, 1024)
		return &buf
	},
}

func getInts(n int) *[]int {
	p := intsPool.Get().(*[]int)
	if cap(*p) < n {
		*p = make([]int, 0, n)
	}
	*p = (*p)[:0]
	return p
}

func putInts(p *[]int) {
	intsPool.Put(p)
}

// PooledBytes is a scoped handle over a borrowed byte buffer: it must be
// released exactly once, on every exit path, to return storage to the
// shared pool.
type PooledBytes struct {
	buf      *[]byte
	released bool
}

// Bytes returns the borrowed slice. Valid only until Release is called.
func (p *PooledBytes) Bytes() []byte {
	if p == nil || p.buf == nil {
		return nil
	}
	return *p.buf
}

// Release returns the underlying storage to the pool. Safe to call more
// than once; only the first call has an effect.
func (p *PooledBytes) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	putBytes(p.buf)
}
