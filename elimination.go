// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"math/rand/v2"
	"runtime"
	"sync/atomic"
	"unsafe"

	"code.hybscloud.com/spin"

	"code.hybscloud.com/cds/hazard"
)

const (
	// elimArenaSize is the number of exchange slots in the arena.
	elimArenaSize = 16

	// elimTries is how many slots an elimination attempt probes.
	elimTries = 4

	// elimCASThreshold is the number of consecutive failed head CASes
	// before an operation tries the arena.
	elimCASThreshold = 4

	// elimSpinIters is how long an offering push waits for a match.
	elimSpinIters = 10
)

// EliminationStack is a lock-free LIFO container: a Treiber stack with a
// randomized elimination back-off arena.
//
// The fast path is identical to [TreiberStack]. An operation that loses the
// head CAS elimCASThreshold times in a row tries the arena instead: a push
// offers its node into a random empty slot and waits briefly; a pop
// exchanges a random slot with nil and, on a hit, consumes the offered node
// directly. A matched push/pop pair completes without touching the central
// stack, so under high contention opposing pairs cancel in parallel.
//
// A successful elimination linearizes at the pop's exchange (the push is
// deemed to have linearized immediately before it).
//
// Ownership: the offering push gives its node to the arena. Exactly one
// goroutine destroys every node — the pop that matched it (central or
// arena) or the push that reclaimed its own expired offer. Because a
// matched node changes hands outside the hazard protocol, arena nodes are
// never pool-recycled; the last holder drops the reference.
type EliminationStack[T any] struct {
	_     pad
	head  atomic.Pointer[elimNode[T]]
	_     pad
	arena [elimArenaSize]elimSlot[T]
}

type elimNode[T any] struct {
	value T
	next  *elimNode[T]
}

type elimSlot[T any] struct {
	n atomic.Pointer[elimNode[T]]
	_ [64 - 8]byte // pad to cache line
}

// NewEliminationStack creates an empty elimination stack.
func NewEliminationStack[T any]() *EliminationStack[T] {
	return &EliminationStack[T]{}
}

// dropNode is the retire deleter: arena handoffs preclude recycling, so
// reclaimed central-path nodes are simply released to the collector.
func dropNode(unsafe.Pointer) {}

// Push adds an element at the top of the stack.
func (s *EliminationStack[T]) Push(elem *T) {
	n := &elimNode[T]{value: *elem}

	casFailures := 0
	sw := spin.Wait{}
	for {
		old := s.head.Load()
		n.next = old
		if s.head.CompareAndSwap(old, n) {
			return
		}

		casFailures++
		if casFailures >= elimCASThreshold {
			if s.tryElimPush(n) {
				return // node consumed by a matching pop
			}
			casFailures = 0
		}
		sw.Once()
	}
}

// Pop removes and returns the element at the top of the stack.
// Returns (zero-value, ErrWouldBlock) if the stack is empty.
func (s *EliminationStack[T]) Pop() (T, error) {
	g := hazard.Acquire()
	defer g.Release()

	casFailures := 0
	sw := spin.Wait{}
	for {
		old := s.head.Load()
		if old == nil {
			// Central stack reads empty: check the arena before giving up.
			if elem, ok := s.tryElimPop(); ok {
				return elem, nil
			}
			var zero T
			return zero, ErrWouldBlock
		}
		g.Protect(unsafe.Pointer(old))
		if s.head.Load() != old {
			continue
		}

		next := old.next
		if s.head.CompareAndSwap(old, next) {
			elem := old.value
			g.Clear()
			g.Retire(unsafe.Pointer(old), dropNode)
			return elem, nil
		}

		casFailures++
		if casFailures >= elimCASThreshold {
			if elem, ok := s.tryElimPop(); ok {
				return elem, nil
			}
			casFailures = 0
		}
		sw.Once()
	}
}

// tryElimPush offers n for elimination. Returns true if a pop consumed the
// node; false if the caller keeps ownership and should resume the CAS loop.
func (s *EliminationStack[T]) tryElimPush(n *elimNode[T]) bool {
	for attempt := 0; attempt < elimTries; attempt++ {
		slot := &s.arena[rand.IntN(elimArenaSize)]

		// Offer the node into an empty slot.
		if !slot.n.CompareAndSwap(nil, n) {
			continue
		}

		// Wait briefly for a pop to take it; any change means it was taken.
		for i := 0; i < elimSpinIters; i++ {
			if slot.n.Load() != n {
				return true
			}
			runtime.Gosched()
		}

		// Timed out: try to take the offer back.
		if slot.n.CompareAndSwap(n, nil) {
			return false // reclaimed, caller still owns n
		}
		return true // a pop raced in during the reclaim
	}
	return false
}

// tryElimPop probes the arena for an offered node.
func (s *EliminationStack[T]) tryElimPop() (T, bool) {
	for attempt := 0; attempt < elimTries; attempt++ {
		slot := &s.arena[rand.IntN(elimArenaSize)]
		if n := slot.n.Swap(nil); n != nil {
			return n.value, true
		}
	}
	var zero T
	return zero, false
}

// Empty reports whether both the central stack and every arena slot held no
// elements at some instant during the call. Advisory: not a linearization
// point.
func (s *EliminationStack[T]) Empty() bool {
	if s.head.Load() != nil {
		return false
	}
	for i := range s.arena {
		if s.arena[i].n.Load() != nil {
			return false
		}
	}
	return true
}
