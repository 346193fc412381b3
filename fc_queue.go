// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"sync"

	"github.com/gammazero/deque"
)

// FCQueue is a flat-combining FIFO container.
//
// The combining discipline is the same as [FCStack]'s, applied to a
// two-ended sequence: enqueues push at the back, dequeues pop at the front.
type FCQueue[T any] struct {
	mu   sync.Mutex
	data deque.Deque[T]
	reqs []*fcRequest[T] // registry: append-only, guarded by mu
	free fcFreeList[T]
}

// NewFCQueue creates an empty flat-combining queue.
func NewFCQueue[T any]() *FCQueue[T] {
	return &FCQueue[T]{}
}

// Enqueue adds an element at the back of the queue.
func (q *FCQueue[T]) Enqueue(elem *T) {
	r := q.acquire()
	r.value = *elem
	r.ok = true // enqueue always succeeds
	r.op.StoreRelease(fcOpPush)

	q.combine()

	var zero T
	r.value = zero
	q.free.push(r)
}

// Dequeue removes and returns the element at the front of the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *FCQueue[T]) Dequeue() (T, error) {
	r := q.acquire()
	r.ok = false
	r.op.StoreRelease(fcOpPop)

	q.combine()

	elem, ok := r.value, r.ok
	var zero T
	r.value = zero
	q.free.push(r)

	if !ok {
		return zero, ErrWouldBlock
	}
	return elem, nil
}

// Empty reports whether the queue is empty.
func (q *FCQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data.Len() == 0
}

func (q *FCQueue[T]) acquire() *fcRequest[T] {
	if r := q.free.pop(); r != nil {
		return r
	}
	r := &fcRequest[T]{}
	q.mu.Lock()
	q.reqs = append(q.reqs, r)
	q.mu.Unlock()
	return r
}

func (q *FCQueue[T]) combine() {
	q.mu.Lock()
	for _, r := range q.reqs {
		switch r.op.LoadAcquire() {
		case fcOpPush:
			q.data.PushBack(r.value)
			// ok already true
			r.op.StoreRelease(fcOpNone)
		case fcOpPop:
			if q.data.Len() > 0 {
				r.value = q.data.PopFront()
				r.ok = true
			} else {
				r.ok = false
			}
			r.op.StoreRelease(fcOpNone)
		}
	}
	q.mu.Unlock()
}
