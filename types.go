// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

// Stack is the combined interface for a concurrent LIFO container.
//
// Push always succeeds (the stack is unbounded). Pop returns ErrWouldBlock
// when the stack is empty.
//
// Empty is advisory on the lock-free implementations: it reports a
// point-in-time snapshot, not a linearization point. Do not use it to decide
// that a concurrent Pop will fail.
//
// Example:
//
//	var s cds.Stack[int] = cds.NewEliminationStack[int]()
//
//	v := 42
//	s.Push(&v)
//
//	got, err := s.Pop()
//	if err == nil {
//	    fmt.Println(got)
//	}
type Stack[T any] interface {
	// Push adds an element at the top of the stack.
	// The element is copied into the stack; it always succeeds.
	Push(elem *T)

	// Pop removes and returns the most recently pushed element.
	// Returns (zero-value, ErrWouldBlock) if the stack is empty.
	Pop() (T, error)

	// Empty reports whether the stack held no elements at some instant
	// during the call. Advisory on lock-free implementations.
	Empty() bool
}

// Queue is the combined interface for a concurrent FIFO container.
//
// Enqueue always succeeds (the queue is unbounded). Dequeue returns
// ErrWouldBlock when the queue is empty.
//
// Empty carries the same advisory caveat as [Stack].
type Queue[T any] interface {
	// Enqueue adds an element at the back of the queue.
	// The element is copied into the queue; it always succeeds.
	Enqueue(elem *T)

	// Dequeue removes and returns the element whose Enqueue linearized
	// earliest among still-enqueued elements.
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)

	// Empty reports whether the queue held no elements at some instant
	// during the call. Advisory on lock-free implementations.
	Empty() bool
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
