// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command cdsbench benchmarks every container against a range of
// goroutine counts under a constant total workload.
//
// Usage:
//
//	cdsbench
//	    -> thread counts {1, 2, 4, 8, 16}, total ops 200000
//
//	cdsbench <threads>
//	    -> single thread count, default total ops
//
//	cdsbench <threads> <total_ops>
//	    -> single thread count, custom total ops
//
// For stacks <threads> is the pusher count; for queues it is the producer
// count (always one consumer). A human-readable progress log is followed by
// a CSV summary:
//
//	kind,name,threads,requested_ops,actual_ops,time_ms,ops_per_sec
package main

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"code.hybscloud.com/iox"
	"go.uber.org/zap"

	"code.hybscloud.com/cds"
	"code.hybscloud.com/cds/hazard"
)

const defaultTotalOps = 200000

var defaultThreadCounts = []int{1, 2, 4, 8, 16}

type benchResult struct {
	kind         string // "stack" or "queue"
	name         string // display label
	threads      int    // stacks: pushers, queues: producers
	requestedOps int
	actualOps    int // queues count enq+deq
	timeMS       float64
	opsPerSec    float64
}

// benchStack pushes a constant total across the given goroutine count,
// measuring the push phase, then drains the stack single-threaded as a
// sanity check (not included in the measured ops).
func benchStack(log *zap.SugaredLogger, name string, s cds.Stack[int], threads, requested int) benchResult {
	perThread := requested / threads
	actual := perThread * threads

	log.Infow("stack bench",
		"name", name,
		"threads", threads,
		"requested_total_pushes", requested,
		"per_thread_pushes", perThread,
		"actual_total_pushes", actual,
	)

	var wg sync.WaitGroup
	start := time.Now()
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perThread; i++ {
				v := id*perThread + i
				s.Push(&v)
			}
		}(t)
	}
	wg.Wait()
	elapsed := time.Since(start)

	timeMS := float64(elapsed.Nanoseconds()) / 1e6
	throughput := 0.0
	if elapsed > 0 {
		throughput = float64(actual) / elapsed.Seconds()
	}

	popped := 0
	for {
		if _, err := s.Pop(); err != nil {
			break
		}
		popped++
	}
	log.Infow("stack bench done",
		"name", name,
		"time_ms", timeMS,
		"pushes_per_sec", throughput,
		"sanity_popped", popped,
	)
	if popped != actual {
		log.Fatalw("popped != pushed", "name", name, "popped", popped, "pushed", actual)
	}

	return benchResult{
		kind:         "stack",
		name:         name,
		threads:      threads,
		requestedOps: requested,
		actualOps:    actual,
		timeMS:       timeMS,
		opsPerSec:    throughput,
	}
}

// benchQueue runs producers against a single consumer (MPSC) over a
// constant total item count. Throughput counts enqueues plus dequeues.
func benchQueue(log *zap.SugaredLogger, name string, q cds.Queue[int], producers, requested int) benchResult {
	perProducer := requested / producers
	actual := perProducer * producers

	log.Infow("queue bench",
		"name", name,
		"producers", producers,
		"requested_total_items", requested,
		"per_producer_items", perProducer,
		"actual_total_items", actual,
	)

	var produced, consumed int64

	var wg sync.WaitGroup
	prodDone := make(chan struct{})
	var prodWG sync.WaitGroup

	start := time.Now()

	// Consumer drains until it has seen every item.
	wg.Add(1)
	go func() {
		defer wg.Done()
		backoff := iox.Backoff{}
		for consumed < int64(actual) {
			if _, err := q.Dequeue(); err == nil {
				consumed++
				backoff.Reset()
				continue
			}
			select {
			case <-prodDone:
				if q.Empty() {
					// Producers finished and the queue reads empty; one
					// final sweep catches any in-flight stragglers.
					for {
						if _, err := q.Dequeue(); err != nil {
							break
						}
						consumed++
					}
					if consumed >= int64(actual) {
						return
					}
				}
			default:
			}
			backoff.Wait()
		}
	}()

	producedCounts := make([]int64, producers)
	for p := 0; p < producers; p++ {
		prodWG.Add(1)
		go func(id int) {
			defer prodWG.Done()
			for i := 0; i < perProducer; i++ {
				v := id*perProducer + i
				q.Enqueue(&v)
				producedCounts[id]++
			}
		}(p)
	}
	prodWG.Wait()
	close(prodDone)
	wg.Wait()

	elapsed := time.Since(start)
	for _, c := range producedCounts {
		produced += c
	}

	timeMS := float64(elapsed.Nanoseconds()) / 1e6
	logicalOps := produced + consumed
	throughput := 0.0
	if elapsed > 0 {
		throughput = float64(logicalOps) / elapsed.Seconds()
	}

	log.Infow("queue bench done",
		"name", name,
		"time_ms", timeMS,
		"enqueued", produced,
		"dequeued", consumed,
		"logical_ops", logicalOps,
		"logical_ops_per_sec", throughput,
	)
	if produced != int64(actual) || consumed != int64(actual) {
		log.Fatalw("item count mismatch", "name", name, "enqueued", produced, "dequeued", consumed, "want", actual)
	}

	return benchResult{
		kind:         "queue",
		name:         name,
		threads:      producers,
		requestedOps: requested,
		actualOps:    int(logicalOps),
		timeMS:       timeMS,
		opsPerSec:    throughput,
	}
}

func main() {
	threadCounts := defaultThreadCounts
	totalOps := defaultTotalOps

	args := os.Args[1:]
	if len(args) >= 1 {
		t, err := strconv.Atoi(args[0])
		if err != nil || t <= 0 {
			fmt.Fprintf(os.Stderr, "invalid thread count %q, must be > 0\n", args[0])
			os.Exit(1)
		}
		threadCounts = []int{t}
	}
	if len(args) >= 2 {
		ops, err := strconv.Atoi(args[1])
		if err != nil || ops <= 0 {
			fmt.Fprintf(os.Stderr, "invalid ops %q, must be > 0\n", args[1])
			os.Exit(1)
		}
		totalOps = ops
	}

	logger := zap.Must(zap.NewDevelopment())
	defer logger.Sync()
	log := logger.Sugar()

	log.Infow("concurrent containers benchmark",
		"mode", "constant total workload",
		"total_ops", totalOps,
		"thread_counts", threadCounts,
	)

	var results []benchResult

	for _, t := range threadCounts {
		for _, algo := range cds.StackAlgos() {
			s, _ := cds.BuildStack[int](algo)
			results = append(results, benchStack(log, cds.StackLabel(algo), s, t, totalOps))
			hazard.ForceReclaim()
		}
	}
	for _, p := range threadCounts {
		for _, algo := range cds.QueueAlgos() {
			q, _ := cds.BuildQueue[int](algo)
			results = append(results, benchQueue(log, cds.QueueLabel(algo), q, p, totalOps))
			hazard.ForceReclaim()
		}
	}

	fmt.Println("\n===== SUMMARY (CSV) =====")
	fmt.Println("kind,name,threads,requested_ops,actual_ops,time_ms,ops_per_sec")
	for _, r := range results {
		fmt.Printf("%s,%s,%d,%d,%d,%.3f,%.0f\n",
			r.kind, r.name, r.threads, r.requestedOps, r.actualOps, r.timeMS, r.opsPerSec)
	}
}
