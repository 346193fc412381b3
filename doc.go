// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cds provides unbounded concurrent LIFO stack and FIFO queue
// containers, each implementing the same abstract contract under a
// different synchronization strategy.
//
// The package offers four stacks and three queues:
//
//   - SGLStack / SGLQueue: single global lock (correctness reference)
//   - TreiberStack:        lock-free LIFO, single CAS on head
//   - EliminationStack:    Treiber with a randomized elimination arena
//   - MSQueue:             Michael–Scott lock-free FIFO with sentinel node
//   - FCStack / FCQueue:   flat combining under one mutex owner
//
// The lock-free variants reclaim removed nodes through the hazard-pointer
// substrate in [code.hybscloud.com/cds/hazard]. TreiberStack and MSQueue
// recycle reclaimed nodes into a node pool, so a node is never reused while
// any in-flight operation still references it; EliminationStack does not
// pool its nodes and leaves reclaimed ones to the garbage collector.
//
// # Quick Start
//
//	s := cds.NewTreiberStack[int]()
//	v := 42
//	s.Push(&v)
//	got, err := s.Pop()
//
//	q := cds.NewMSQueue[int]()
//	q.Enqueue(&v)
//	got, err = q.Dequeue()
//
// # Basic Usage
//
// All stacks share the [Stack] interface and all queues share the [Queue]
// interface. Push and Enqueue always succeed (the containers are unbounded);
// Pop and Dequeue return ErrWouldBlock when the container is empty:
//
//	got, err := q.Dequeue()
//	if cds.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// Elements are copied by value at the boundary. The element is passed by
// pointer to avoid copying large structs twice; the container stores a copy,
// so the original can be modified after the call returns.
//
// # Choosing a Container
//
// SGLStack and SGLQueue take one mutex around a sequential structure. They
// are the simplest and serve as the correctness reference for the others.
//
// TreiberStack is the classic lock-free stack: push and pop are a single
// CAS on the head pointer. It scales until the head becomes a hot spot.
//
// EliminationStack extends Treiber with a back-off arena: an operation that
// keeps losing the head CAS offers itself for elimination, and an opposing
// push/pop pair that meets in the arena completes without touching the
// central stack at all. Under high contention pairs cancel in parallel.
//
// MSQueue is the Michael–Scott queue: lock-free enqueue and dequeue over a
// linked list with a sentinel dummy node and a lagging, help-advanced tail.
//
// FCStack and FCQueue use flat combining: each operation publishes a request
// record and the first thread through the mutex drains every pending request
// against the sequential structure. One lock acquisition serves a batch.
//
// # Ordering Guarantees
//
// Every container is linearizable: each completed operation takes effect at
// one atomic instant, and the element multiset is conserved (no value is
// duplicated or fabricated). Per-goroutine program order is preserved.
// Across goroutines only linearizability is guaranteed.
//
// Empty on the lock-free variants is a point-in-time snapshot, not a
// linearization point. Treat it as advisory.
//
// # Progress
//
// The mutex-based containers block on lock contention. The lock-free
// containers never block but may retry unboundedly under adversarial
// scheduling: they are lock-free, not wait-free. Retry loops back off with
// [code.hybscloud.com/spin] and the elimination arena yields to the
// scheduler between reads.
//
// # Error Handling
//
// Pop and Dequeue return [ErrWouldBlock] when the container is empty. The
// error is sourced from [code.hybscloud.com/iox] for ecosystem consistency;
// it is a control flow signal, not a failure:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        process(v)
//	        continue
//	    }
//	    if !cds.IsWouldBlock(err) {
//	        return err
//	    }
//	    backoff.Wait()
//	}
//
// # Condition Variable
//
// [Cond] wraps sync.Cond with a generation counter so that Wait never
// returns without an intervening Signal or Broadcast. It is independent of
// the containers and usable for any mutex-and-condition coordination.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives but cannot
// observe happens-before relationships established through atomic memory
// orderings on separate variables. The hazard-pointer protocol and the
// flat-combining publish/drain handshake are correct but may report false
// positives under the race detector. Tests incompatible with race detection
// are gated on RaceEnabled.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/spin] for CPU pause instructions, and
// [github.com/gammazero/deque] for the sequential two-ended structures
// behind SGLQueue and FCQueue.
package cds
