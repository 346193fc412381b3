// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cds_test

import (
	"sort"
	"sync"
	"testing"

	"code.hybscloud.com/cds"
)

// =============================================================================
// Flat-Combining Containers
// =============================================================================

// TestFCStackConcurrent checks conservation under many concurrent callers:
// every published push is applied exactly once, every applied pop removes
// exactly one element, and the drained remainder completes the multiset.
func TestFCStackConcurrent(t *testing.T) {
	if cds.RaceEnabled {
		t.Skip("skip: combining handshake orders non-atomic fields across variables")
	}

	const (
		workers   = 8
		perWorker = 20000
	)
	total := workers * perWorker

	s := cds.NewFCStack[int]()

	seen := make([]int32, total)
	counts := make([]int, workers)

	var pushWG sync.WaitGroup
	for id := 0; id < workers; id++ {
		pushWG.Add(1)
		go func(id int) {
			defer pushWG.Done()
			for i := 0; i < perWorker; i++ {
				v := id*perWorker + i
				s.Push(&v)
			}
		}(id)
	}

	done := make(chan struct{})
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

	pushWG.Wait()
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
}

// TestFCQueueConcurrent: multiple producers, multiple consumers, multiset
// equality after quiescence.
func TestFCQueueConcurrent(t *testing.T) {
	if cds.RaceEnabled {
		t.Skip("skip: combining handshake orders non-atomic fields across variables")
	}

	const (
		producers = 4
		consumers = 4
		perProd   = 20000
	)
	total := producers * perProd

	q := cds.NewFCQueue[int]()

	var prodWG sync.WaitGroup
	for id := 0; id < producers; id++ {
		prodWG.Add(1)
		go func(id int) {
			defer prodWG.Done()
			for i := 0; i < perProd; i++ {
				v := id*perProd + i
				q.Enqueue(&v)
			}
		}(id)
	}

	done := make(chan struct{})
	var consWG sync.WaitGroup
	results := make([][]int, consumers)
	for c := 0; c < consumers; c++ {
		consWG.Add(1)
		go func(c int) {
			defer consWG.Done()
			for {
				v, err := q.Dequeue()
				if err == nil {
					results[c] = append(results[c], v)
					continue
				}
				select {
				case <-done:
					for {
						v, err := q.Dequeue()
						if err != nil {
							return
						}
						results[c] = append(results[c], v)
					}
				default:
				}
			}
		}(c)
	}

	prodWG.Wait()
	close(done)
	consWG.Wait()

	var all []int
	for _, r := range results {
		all = append(all, r...)
	}
	if len(all) != total {
		t.Fatalf("dequeued %d items, want %d", len(all), total)
	}
	sort.Ints(all)
	for i, v := range all {
		if v != i {
			t.Fatalf("dequeued[%d] = %d after sort, want %d", i, v, i)
		}
	}
	if !q.Empty() {
		t.Fatal("queue not empty after balanced quiescence")
	}
}

// TestFCQueueSingleCombinerOrder pins that requests applied inside one
// drain form a valid serial history: with a single caller the container
// degenerates to the sequential structure.
func TestFCQueueSingleCombinerOrder(t *testing.T) {
	q := cds.NewFCQueue[int]()
	for i := 0; i < 1000; i++ {
		v := i
		q.Enqueue(&v)
	}
	for i := 0; i < 1000; i++ {
		got, err := q.Dequeue()
		if err != nil || got != i {
			t.Fatalf("Dequeue: got (%d, %v), want (%d, nil)", got, err, i)
		}
	}
	if _, err := q.Dequeue(); !cds.IsWouldBlock(err) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestFCReuseAcrossBatches drives interleaved operations from a bounded
// worker set long enough that request records cycle through the free list
// many times, checking that reuse never corrupts a result.
func TestFCReuseAcrossBatches(t *testing.T) {
	if cds.RaceEnabled {
		t.Skip("skip: combining handshake orders non-atomic fields across variables")
	}

	const (
		workers = 4
		rounds  = 10000
	)

	s := cds.NewFCStack[int]()

	var wg sync.WaitGroup
	for id := 0; id < workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				v := id
				s.Push(&v)
				got, err := s.Pop()
				if err != nil {
					t.Errorf("worker %d round %d: Pop after Push: %v", id, i, err)
					return
				}
				if got < 0 || got >= workers {
					t.Errorf("worker %d round %d: popped foreign value %d", id, i, got)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	if !s.Empty() {
		t.Fatal("stack not empty after balanced rounds")
	}
}
