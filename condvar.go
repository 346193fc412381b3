// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Cond is a condition variable whose Wait never returns spuriously: every
// successful return corresponds to a Signal or Broadcast that occurred
// after the call to Wait began.
//
// It wraps [sync.Cond] with an atomic generation counter. Signal and
// Broadcast bump the generation before waking; Wait snapshots the
// generation and re-parks until it changes.
//
// Rapid notify bursts may coalesce: two notifications separated only by
// instants when no waiter was parked need not each produce a wake. With a
// single parked waiter and paced Signal calls, the waiter observes exactly
// one wake per Signal.
//
// Like sync.Cond, the caller must hold the associated Locker around Wait
// and around the state changes the condition depends on.
type Cond struct {
	cv  sync.Cond
	gen atomix.Uint64
}

// NewCond returns a Cond with Locker l.
func NewCond(l sync.Locker) *Cond {
	return &Cond{cv: sync.Cond{L: l}}
}

// Wait atomically unlocks the Locker and parks the caller until an
// intervening Signal or Broadcast. Unlike sync.Cond.Wait it cannot return
// without one: underlying spurious wakeups are absorbed by the generation
// check. The Locker is held again on return.
func (c *Cond) Wait() {
	s := c.gen.LoadAcquire()
	for c.gen.LoadAcquire() == s {
		c.cv.Wait()
	}
}

// WaitUntil parks the caller until pred returns true, re-evaluating after
// every wakeup. The predicate itself absorbs spurious returns, so this
// forwards to the underlying primitive directly. pred is evaluated with the
// Locker held.
func (c *Cond) WaitUntil(pred func() bool) {
	for !pred() {
		c.cv.Wait()
	}
}

// Signal wakes one waiter, if any is parked.
func (c *Cond) Signal() {
	c.gen.AddAcqRel(1)
	c.cv.Signal()
}

// Broadcast wakes all parked waiters.
func (c *Cond) Broadcast() {
	c.gen.AddAcqRel(1)
	c.cv.Broadcast()
}
