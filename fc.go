// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// Flat-combining request protocol, shared by FCStack and FCQueue.
//
// An operation acquires a request record, fills in its operands, publishes
// the op code with a release store, and calls combine(). Whichever caller
// wins the combiner mutex drains every published request against the
// sequential structure, writes the results, and clears each op code with a
// release store. Blocked callers wait on the mutex, not on their own flag;
// by the time a caller holds the mutex its own request has either been
// served by an earlier combiner or is served by its own drain pass.
//
// Records are registered append-only (under the combiner mutex) on first
// use and never freed. Between operations they rest on a versioned
// lock-free free list; the version half of the 128-bit head makes reuse
// ABA-safe.

const (
	fcOpNone int32 = iota
	fcOpPush       // push (stack) / enqueue (queue)
	fcOpPop        // pop (stack) / dequeue (queue)
)

// fcRequest is one combining request record.
// op is the published op code; value and ok are written by the owner before
// publication or by the combiner before the op code is cleared, never both
// at once. freeNext is only meaningful while the record rests on the free
// list.
type fcRequest[T any] struct {
	op       atomix.Int32
	_        pad
	value    T
	ok       bool
	freeNext *fcRequest[T]
}

// fcFreeList is a versioned Treiber-style free list of idle request
// records. The head packs (version, record address) into one 128-bit cell;
// bumping the version on every successful swap keeps a stale (head, next)
// pair from ever being reinstalled.
//
// Records are always reachable through the container's registry, so holding
// the address in the integer cell does not hide them from the collector.
type fcFreeList[T any] struct {
	head atomix.Uint128 // lo=version, hi=record address
}

func (l *fcFreeList[T]) pop() *fcRequest[T] {
	for {
		ver, addr := l.head.LoadAcquire()
		if addr == 0 {
			return nil
		}
		r := (*fcRequest[T])(unsafe.Pointer(uintptr(addr)))
		next := uint64(uintptr(unsafe.Pointer(r.freeNext)))
		if l.head.CompareAndSwapAcqRel(ver, addr, ver+1, next) {
			return r
		}
	}
}

func (l *fcFreeList[T]) push(r *fcRequest[T]) {
	for {
		ver, addr := l.head.LoadAcquire()
		r.freeNext = (*fcRequest[T])(unsafe.Pointer(uintptr(addr)))
		if l.head.CompareAndSwapAcqRel(ver, addr, ver+1, uint64(uintptr(unsafe.Pointer(r)))) {
			return
		}
	}
}
