// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/spin"

	"code.hybscloud.com/cds/hazard"
)

// MSQueue is a lock-free FIFO container (Michael–Scott queue).
//
// head and tail start on a shared sentinel dummy node; head is always the
// current dummy and the queue is empty iff head.next is nil. Enqueue links
// at tail.next and swings tail best-effort; a lagging tail is helped
// forward by whichever operation observes it, so it never trails the last
// real node by more than one step.
//
// Dequeued dummies are retired through the hazard-pointer substrate and
// recycled into a node pool once unreferenced. Both sides protect the node
// they dereference: under recycling, an unprotected tail could be reused at
// another position between the consistency check and the link CAS.
//
// Progress: lock-free, not wait-free.
type MSQueue[T any] struct {
	_       pad
	head    atomic.Pointer[msNode[T]]
	_       pad
	tail    atomic.Pointer[msNode[T]]
	_       pad
	pool    sync.Pool
	recycle func(unsafe.Pointer)
}

type msNode[T any] struct {
	next  atomic.Pointer[msNode[T]]
	value T
}

// NewMSQueue creates an empty Michael–Scott queue.
func NewMSQueue[T any]() *MSQueue[T] {
	q := &MSQueue[T]{}
	q.pool.New = func() any { return new(msNode[T]) }
	q.recycle = func(p unsafe.Pointer) {
		n := (*msNode[T])(p)
		var zero T
		n.value = zero
		n.next.Store(nil)
		q.pool.Put(n)
	}
	dummy := new(msNode[T])
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Enqueue adds an element at the back of the queue.
func (q *MSQueue[T]) Enqueue(elem *T) {
	n := q.pool.Get().(*msNode[T])
	n.value = *elem
	n.next.Store(nil)

	g := hazard.Acquire()
	defer g.Release()

	sw := spin.Wait{}
	for {
		tail := q.tail.Load()
		g.Protect(unsafe.Pointer(tail))
		if q.tail.Load() != tail {
			continue // tail moved between load and protect, restart
		}

		next := tail.next.Load()
		if next == nil {
			// tail is the real last node: try to link.
			if tail.next.CompareAndSwap(nil, n) {
				// Swing tail to the new node, best-effort.
				q.tail.CompareAndSwap(tail, n)
				return
			}
		} else {
			// tail lags, help it forward.
			q.tail.CompareAndSwap(tail, next)
		}
		sw.Once()
	}
}

// Dequeue removes and returns the element at the front of the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MSQueue[T]) Dequeue() (T, error) {
	g := hazard.Acquire()
	defer g.Release()

	sw := spin.Wait{}
	for {
		head := q.head.Load()
		g.Protect(unsafe.Pointer(head))
		if q.head.Load() != head {
			continue // head moved between load and protect, restart
		}

		tail := q.tail.Load()
		next := head.next.Load()

		if next == nil {
			var zero T
			return zero, ErrWouldBlock
		}
		if head == tail {
			// tail is falling behind, advance it and retry.
			q.tail.CompareAndSwap(tail, next)
			continue
		}

		// Copy the value before the head CAS: once head passes next, next
		// may become the dummy, be retired and recycled. If our CAS fails
		// the copy is discarded.
		elem := next.value
		if q.head.CompareAndSwap(head, next) {
			g.Clear()
			g.Retire(unsafe.Pointer(head), q.recycle)
			return elem, nil
		}
		sw.Once()
	}
}

// Empty reports whether the queue held no elements at some instant during
// the call. Advisory: not a linearization point.
func (q *MSQueue[T]) Empty() bool {
	return q.head.Load().next.Load() == nil
}
