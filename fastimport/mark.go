package fastimport

import "sync"

// MarkAllocator hands out the monotonically increasing mark numbers used
// to label blobs and commits in a fast-import stream so later commands
// (from, merge, M) can reference them. Marks are never reused: handing out
// the same number twice across a restarted import would let git
// fast-import silently graft new history onto the wrong object.
type MarkAllocator struct {
	mu   sync.Mutex
	next uint64
}

// NewMarkAllocator returns an allocator that will hand out highWater+1 as
// its first mark. Pass the high-water mark persisted from a prior run to
// resume without reusing marks; pass 0 to start fresh.
func NewMarkAllocator(highWater uint64) *MarkAllocator {
	return &MarkAllocator{next: highWater}
}

// Next returns the next unused mark.
func (a *MarkAllocator) Next() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	return a.next
}

// Peek returns the highest mark handed out so far, for persisting as the
// next run's high-water mark. Before the first Next it returns the
// high-water mark the allocator was created with.
func (a *MarkAllocator) Peek() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.next
}
