// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds_test

import (
	"sort"
	"sync"
	"testing"

	"code.hybscloud.com/cds"
	"code.hybscloud.com/cds/hazard"
)

// =============================================================================
// Treiber Stack
// =============================================================================

// TestTreiberStress pushes (id<<32)|i from four goroutines, then pops
// single-threaded and checks the full set survives intact.
func TestTreiberStress(t *testing.T) {
	const (
		threads = 4
		perGoro = 20000
	)

	s := cds.NewTreiberStack[uint64]()

	var wg sync.WaitGroup
	for id := 0; id < threads; id++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			for i := uint64(0); i < perGoro; i++ {
				v := id<<32 | i
				s.Push(&v)
			}
		}(uint64(id))
	}
	wg.Wait()

	got := make([]uint64, 0, threads*perGoro)
	for {
		v, err := s.Pop()
		if err != nil {
			break
		}
		got = append(got, v)
	}

	if len(got) != threads*perGoro {
		t.Fatalf("popped %d values, want %d", len(got), threads*perGoro)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	k := 0
	for id := uint64(0); id < threads; id++ {
		for i := uint64(0); i < perGoro; i++ {
			if want := id<<32 | i; got[k] != want {
				t.Fatalf("sorted[%d] = %#x, want %#x", k, got[k], want)
			}
			k++
		}
	}
}

// TestTreiberConcurrentPushPop runs producers against consumers and checks
// conservation: every popped value was pushed, nothing is duplicated, and
// after quiescence the counts balance. Exercises node recycling under
// concurrent protection (the reclamation stress of the hazard substrate).
func TestTreiberConcurrentPushPop(t *testing.T) {
	if cds.RaceEnabled {
		t.Skip("skip: hazard-pointer protocol orders non-atomic fields across variables")
	}

	const (
		pushers = 4
		poppers = 4
	)
	perPusher := 100000
	if testing.Short() {
		perPusher = 10000
	}
	total := pushers * perPusher

	s := cds.NewTreiberStack[uint64]()

	seen := make([]int32, total)
	var mu sync.Mutex // guards popCount handoff only
	popCount := 0

	var wg sync.WaitGroup
	done := make(chan struct{})

	for id := 0; id < pushers; id++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			for i := uint64(0); i < uint64(perPusher); i++ {
				v := id*uint64(perPusher) + i
				s.Push(&v)
			}
		}(uint64(id))
	}

	var popWG sync.WaitGroup
	for c := 0; c < poppers; c++ {
		popWG.Add(1)
		go func() {
			defer popWG.Done()
			local := 0
			for {
				v, err := s.Pop()
				if err == nil {
					if v >= uint64(total) {
						t.Errorf("popped out-of-range value %d", v)
						return
					}
					seen[v]++
					local++
					continue
				}
				select {
				case <-done:
					// Producers finished: drain whatever is left.
					for {
						v, err := s.Pop()
						if err != nil {
							mu.Lock()
							popCount += local
							mu.Unlock()
							return
						}
						seen[v]++
						local++
					}
				default:
				}
			}
		}()
	}

	wg.Wait()
	close(done)
	popWG.Wait()

	if popCount != total {
		t.Fatalf("popped %d values, want %d", popCount, total)
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

// TestTreiberEmptyAdvisory pins the snapshot semantics: Empty on a fresh
// stack, non-empty after a push, empty again after the matching pop.
func TestTreiberEmptyAdvisory(t *testing.T) {
	s := cds.NewTreiberStack[int]()
	if !s.Empty() {
		t.Fatal("fresh stack not empty")
	}
	v := 7
	s.Push(&v)
	if s.Empty() {
		t.Fatal("stack empty after push")
	}
	if _, err := s.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if !s.Empty() {
		t.Fatal("stack not empty after pop")
	}
}
