// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"sync"

	"github.com/gammazero/deque"
)

// SGLQueue is a FIFO container under a single global lock.
//
// Every operation takes the one mutex, mutates the backing deque, and
// releases it. Like [SGLStack] it is the correctness reference for the
// other queues.
type SGLQueue[T any] struct {
	mu   sync.Mutex
	data deque.Deque[T]
}

// NewSGLQueue creates an empty coarse-locked queue.
func NewSGLQueue[T any]() *SGLQueue[T] {
	return &SGLQueue[T]{}
}

// Enqueue adds an element at the back of the queue.
func (q *SGLQueue[T]) Enqueue(elem *T) {
	q.mu.Lock()
	q.data.PushBack(*elem)
	q.mu.Unlock()
}

// Dequeue removes and returns the element at the front of the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SGLQueue[T]) Dequeue() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.data.Len() == 0 {
		var zero T
		return zero, ErrWouldBlock
	}
	return q.data.PopFront(), nil
}

// Empty reports whether the queue is empty.
func (q *SGLQueue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data.Len() == 0
}

// Size returns the number of elements currently held.
func (q *SGLQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.data.Len()
}
