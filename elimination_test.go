// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/cds"
	"code.hybscloud.com/cds/hazard"
)

// =============================================================================
// Elimination Stack
// =============================================================================

// TestEliminationSmall: push 10, push 20; pop 20, pop 10; pop would-block.
func TestEliminationSmall(t *testing.T) {
	s := cds.NewEliminationStack[int]()

	for _, v := range []int{10, 20} {
		v := v
		s.Push(&v)
	}
	if got, err := s.Pop(); err != nil || got != 20 {
		t.Fatalf("Pop: got (%d, %v), want (20, nil)", got, err)
	}
	if got, err := s.Pop(); err != nil || got != 10 {
		t.Fatalf("Pop: got (%d, %v), want (10, nil)", got, err)
	}
	if _, err := s.Pop(); !cds.IsWouldBlock(err) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestEliminationHighContention hammers one stack with balanced push/pop
// pairs from many goroutines so the arena actually fires, then checks
// conservation: every pushed value is popped exactly once (whether through
// the central stack or an arena handoff).
func TestEliminationHighContention(t *testing.T) {
	if cds.RaceEnabled {
		t.Skip("skip: hazard-pointer protocol orders non-atomic fields across variables")
	}

	const workers = 8
	perWorker := 50000
	if testing.Short() {
		perWorker = 5000
	}
	total := workers * perWorker

	s := cds.NewEliminationStack[int]()

	seen := make([]int32, total)
	counts := make([]int, workers)

	var wg sync.WaitGroup
	done := make(chan struct{})

	// workers pushers and workers poppers run at full speed: the pop side
	// keeps draining so the push side keeps contending on head.
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				v := id*perWorker + i
				s.Push(&v)
			}
		}(id)
	}

	var popWG sync.WaitGroup
	for c := 0; c < workers; c++ {
		popWG.Add(1)
		go func(c int) {
			defer popWG.Done()
			for {
				v, err := s.Pop()
				if err == nil {
					if v < 0 || v >= total {
						t.Errorf("popped out-of-range value %d", v)
						return
					}
					seen[v]++
					counts[c]++
					continue
				}
				select {
				case <-done:
					for {
						v, err := s.Pop()
						if err != nil {
							return
						}
						seen[v]++
						counts[c]++
					}
				default:
				}
			}
		}(c)
	}

	wg.Wait()
	close(done)
	popWG.Wait()

	popped := 0
	for _, c := range counts {
		popped += c
	}
	if popped != total {
		t.Fatalf("popped %d values, want %d", popped, total)
	}
	for v, n := range seen {
		if n != 1 {
			t.Fatalf("value %d popped %d times", v, n)
		}
	}
	if !s.Empty() {
		t.Fatal("stack not empty after balanced quiescence")
	}

	hazard.ForceReclaim()
}

// TestEliminationEmptyChecksArena pins Empty (which reads the central stack
// and every arena slot) across a single-goroutine fill and drain: not empty
// while any element is held, empty once drained. With one goroutine the
// head CAS never fails, so no element passes through the arena here.
func TestEliminationEmptyChecksArena(t *testing.T) {
	s := cds.NewEliminationStack[int]()
	if !s.Empty() {
		t.Fatal("fresh stack not empty")
	}
	for i := 0; i < 32; i++ {
		v := i
		s.Push(&v)
		if s.Empty() {
			t.Fatalf("empty with %d elements held", i+1)
		}
	}
	for i := 0; i < 32; i++ {
		if _, err := s.Pop(); err != nil {
			t.Fatalf("Pop(%d): %v", i, err)
		}
	}
	if !s.Empty() {
		t.Fatal("stack not empty after draining")
	}
}
