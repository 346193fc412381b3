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

// TreiberStack is a lock-free LIFO container.
//
// Push and Pop are a single CAS on the head pointer. Popped nodes are
// retired through the hazard-pointer substrate and recycled into a node
// pool once no in-flight operation references them, so the head CAS can
// never observe an A→B→A transition with a reused node.
//
// Progress: lock-free, not wait-free. An operation may retry unboundedly
// under adversarial scheduling but some operation always completes.
type TreiberStack[T any] struct {
	_       pad
	head    atomic.Pointer[treiberNode[T]]
	_       pad
	pool    sync.Pool
	recycle func(unsafe.Pointer)
}

type treiberNode[T any] struct {
	value T
	next  *treiberNode[T] // written before publish, stable while protected
}

// NewTreiberStack creates an empty Treiber stack.
func NewTreiberStack[T any]() *TreiberStack[T] {
	s := &TreiberStack[T]{}
	s.pool.New = func() any { return new(treiberNode[T]) }
	s.recycle = func(p unsafe.Pointer) {
		n := (*treiberNode[T])(p)
		var zero T
		n.value = zero
		n.next = nil
		s.pool.Put(n)
	}
	return s
}

// Push adds an element at the top of the stack.
//
// The pusher owns the node until the CAS linearizes it, so no hazard
// protection is needed on this side.
func (s *TreiberStack[T]) Push(elem *T) {
	n := s.pool.Get().(*treiberNode[T])
	n.value = *elem

	sw := spin.Wait{}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}
		sw.Once()
	}
}

// Pop removes and returns the element at the top of the stack.
// Returns (zero-value, ErrWouldBlock) if the stack is empty.
func (s *TreiberStack[T]) Pop() (T, error) {
	g := hazard.Acquire()
	defer g.Release()

	sw := spin.Wait{}
	var old *treiberNode[T]
	for {
		old = s.head.Load()
		if old == nil {
			var zero T
			return zero, ErrWouldBlock
		}
		g.Protect(unsafe.Pointer(old))
		if s.head.Load() != old {
			continue // head moved between load and protect, restart
		}

		// old is protected: next cannot be recycled out from under us.
		next := old.next
		if s.head.CompareAndSwap(old, next) {
			break
		}
		sw.Once()
	}

	elem := old.value
	g.Clear()
	g.Retire(unsafe.Pointer(old), s.recycle)
	return elem, nil
}

// Empty reports whether the stack held no elements at some instant during
// the call. Advisory: not a linearization point.
func (s *TreiberStack[T]) Empty() bool {
	return s.head.Load() == nil
}
