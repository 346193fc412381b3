// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hazard provides safe memory reclamation for lock-free containers
// via hazard pointers.
//
// A reader publishes the address it is about to dereference into a hazard
// record; a writer that has removed a node retires it instead of recycling
// it directly. Retired nodes are only handed to their deleter once no
// hazard record holds their address, so a node can never be recycled and
// reused while an in-flight operation still references it. This is what
// makes CAS on a recycled address safe: an A→B→A transition cannot be
// observed with a reused node, because reuse is blocked while the address
// is protected.
//
// # Protocol
//
// The only safe way to dereference a shared atomic pointer A:
//
//	g := hazard.Acquire()
//	defer g.Release()
//	for {
//	    p := A.Load()
//	    if p == nil {
//	        return // empty
//	    }
//	    g.Protect(unsafe.Pointer(p))
//	    if A.Load() != p {
//	        continue // recheck failed, restart
//	    }
//	    // p is now safe to dereference until g.Clear or g.Release
//	    break
//	}
//
// The recheck guarantees that any retirement of p linearizes either before
// the Protect (in which case the slot blocks reclamation) or after the
// recheck observes a changed A and the reader restarts.
//
// # Records and ownership
//
// Records live in a process-wide array of MaxThreads×SlotsPerThread entries.
// Ownership is claimed per operation: Acquire CAS-claims a free record and
// Release returns it. Reclaiming a record is obstruction-free; if every
// record is claimed the process is misconfigured for its level of
// concurrency and Acquire panics.
//
// Each record carries its own retire shard. Only the current claimant
// appends to it, so retirement is synchronization-free; the shard stays
// with the record across claims and is drained by threshold-triggered
// scans.
//
// # Scan
//
// When a shard reaches ReclaimThreshold entries, the claimant snapshots
// every record's protected address and partitions the shard: protected
// entries are kept, the rest are reclaimed through their deleter.
// ForceReclaim skips the snapshot and reclaims everything; it must only be
// called when the caller externally guarantees single-threaded quiescence
// (no container operation in flight).
package hazard

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

const (
	// MaxThreads is the number of concurrent holders the record array is
	// sized for.
	MaxThreads = 64

	// SlotsPerThread is the number of records one holder may claim at once.
	SlotsPerThread = 2

	// MaxRecords is the size of the process-wide record array.
	MaxRecords = MaxThreads * SlotsPerThread

	// ReclaimThreshold is the shard length that triggers a scan.
	ReclaimThreshold = 64
)

// retiree is one entry of a retire shard. The unsafe.Pointer keeps the
// referent visible to the GC until the deleter runs.
type retiree struct {
	ptr unsafe.Pointer
	del func(unsafe.Pointer)
}

// record is one hazard record: an owner word claimed per operation and the
// protected address. The address is stored as a uintptr cell; referent
// liveness is carried by the protecting operation's local reference and by
// the retire shard entries, never by the cell itself.
type record struct {
	owner atomix.Int32
	_     pad
	addr  atomix.Uintptr
	_     pad
	shard []retiree
	_     pad
}

// pad is cache line padding to prevent false sharing between records.
type pad [64]byte

// records is the process-wide hazard record array.
var records [MaxRecords]record

// Guard is a claimed hazard record. The zero Guard is invalid; obtain one
// with Acquire and return it with Release.
type Guard struct {
	rec *record
}

// Acquire claims a free hazard record.
//
// The claim CAS is obstruction-free. If no record is free the subsystem is
// saturated: more than MaxThreads×SlotsPerThread concurrent hazard demands
// is a misconfiguration, and Acquire panics.
func Acquire() Guard {
	for i := range records {
		r := &records[i]
		if r.owner.LoadRelaxed() != 0 {
			continue
		}
		if r.owner.CompareAndSwapAcqRel(0, 1) {
			return Guard{rec: r}
		}
	}
	panic("hazard: no free hazard records (more than MaxThreads*SlotsPerThread concurrent operations)")
}

// Protect publishes p as the guard's protected address.
// The store has release semantics; pair it with the recheck described in
// the package documentation before dereferencing p.
func (g Guard) Protect(p unsafe.Pointer) {
	g.rec.addr.StoreRelease(uintptr(p))
}

// Clear publishes the empty address, ending protection.
func (g Guard) Clear() {
	g.rec.addr.StoreRelease(0)
}

// Retire appends p to the guard's retire shard. Once the shard reaches
// ReclaimThreshold a scan runs: entries protected by any record are kept,
// the rest are handed to their deleter.
//
// The caller must have already unlinked p from the shared structure; after
// Retire the node belongs to the substrate until the deleter runs.
func (g Guard) Retire(p unsafe.Pointer, del func(unsafe.Pointer)) {
	r := g.rec
	r.shard = append(r.shard, retiree{ptr: p, del: del})
	if len(r.shard) >= ReclaimThreshold {
		r.scan()
	}
}

// Release clears the protected address and returns the record. The retire
// shard stays with the record and is drained by later claimants' scans or
// by ForceReclaim.
func (g Guard) Release() {
	g.rec.addr.StoreRelease(0)
	g.rec.owner.StoreRelease(0)
}

// scan partitions the shard against a snapshot of every protected address.
// Only the record's claimant calls scan, so the shard mutation is
// single-writer.
func (r *record) scan() {
	var snapshot [MaxRecords]uintptr
	n := 0
	for i := range records {
		if p := records[i].addr.LoadAcquire(); p != 0 {
			snapshot[n] = p
			n++
		}
	}
	hazards := snapshot[:n]

	kept := r.shard[:0]
	for _, e := range r.shard {
		if contains(hazards, uintptr(e.ptr)) {
			kept = append(kept, e)
		} else {
			e.del(e.ptr)
		}
	}
	// Zero the tail so reclaimed entries stop pinning their referents.
	for i := len(kept); i < len(r.shard); i++ {
		r.shard[i] = retiree{}
	}
	r.shard = kept
}

func contains(hazards []uintptr, p uintptr) bool {
	for _, h := range hazards {
		if h == p {
			return true
		}
	}
	return false
}

// ForceReclaim reclaims every shard entry in the process, ignoring
// protected addresses.
//
// It must only be called when the caller externally guarantees that no
// container operation is in flight (single-threaded quiescence), e.g. after
// all users of a container have completed.
func ForceReclaim() {
	for i := range records {
		r := &records[i]
		for _, e := range r.shard {
			e.del(e.ptr)
		}
		for j := range r.shard {
			r.shard[j] = retiree{}
		}
		r.shard = r.shard[:0]
	}
}
