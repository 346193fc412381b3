// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command cdsrun runs a single container with a fixed workload and prints
// labeled counters.
//
// Usage:
//
//	cdsrun --kind=stack --algo=treiber --threads=4 --ops=200000
//	cdsrun --kind=queue --algo=ms --threads=4 --ops=200000
//
// Stack algorithms: sgl, treiber, elim, fc.
// Queue algorithms: sgl, ms, fc.
//
// For stacks --threads is the pusher count; for queues it is the producer
// count (always one consumer). Exits non-zero on an unknown kind or
// algorithm.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"code.hybscloud.com/iox"

	"code.hybscloud.com/cds"
)

func runStack(name string, s cds.Stack[int], threads, totalOps int) {
	per := totalOps / threads

	var wg sync.WaitGroup
	pushed := make([]int, threads)

	start := time.Now()
	for t := 0; t < threads; t++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				v := i
				s.Push(&v)
				pushed[id]++
			}
		}(t)
	}
	wg.Wait()
	ms := float64(time.Since(start).Nanoseconds()) / 1e6

	totalPushed := 0
	for _, c := range pushed {
		totalPushed += c
	}
	popped := 0
	for {
		if _, err := s.Pop(); err != nil {
			break
		}
		popped++
	}

	fmt.Println("=== STACK RUN ===")
	fmt.Printf("algo=%s\n", name)
	fmt.Printf("threads=%d\n", threads)
	fmt.Printf("pushed=%d\n", totalPushed)
	fmt.Printf("popped=%d\n", popped)
	fmt.Printf("time_ms=%.3f\n", ms)
	fmt.Println("==========")
}

func runQueue(name string, q cds.Queue[int], producers, totalOps int) {
	per := totalOps / producers
	total := per * producers

	var wg sync.WaitGroup
	produced := make([]int, producers)
	consumed := 0
	prodDone := make(chan struct{})

	start := time.Now()
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < per; i++ {
				v := i
				q.Enqueue(&v)
				produced[id]++
			}
		}(p)
	}

	var consumerWG sync.WaitGroup
	consumerWG.Add(1)
	go func() {
		defer consumerWG.Done()
		backoff := iox.Backoff{}
		for consumed < total {
			if _, err := q.Dequeue(); err == nil {
				consumed++
				backoff.Reset()
				continue
			}
			select {
			case <-prodDone:
				for {
					if _, err := q.Dequeue(); err != nil {
						break
					}
					consumed++
				}
				if consumed >= total {
					return
				}
			default:
			}
			backoff.Wait()
		}
	}()

	wg.Wait()
	close(prodDone)
	consumerWG.Wait()
	ms := float64(time.Since(start).Nanoseconds()) / 1e6

	totalProduced := 0
	for _, c := range produced {
		totalProduced += c
	}

	fmt.Println("=== QUEUE RUN ===")
	fmt.Printf("algo=%s\n", name)
	fmt.Printf("producers=%d\n", producers)
	fmt.Printf("produced=%d\n", totalProduced)
	fmt.Printf("consumed=%d\n", consumed)
	fmt.Printf("time_ms=%.3f\n", ms)
	fmt.Println("==========")
}

func main() {
	kind := flag.String("kind", "", "container kind: stack or queue")
	algo := flag.String("algo", "", "algorithm name")
	threads := flag.Int("threads", 4, "goroutine count (stack: pushers, queue: producers)")
	ops := flag.Int("ops", 200000, "total operation count")
	flag.Parse()

	if *threads <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "threads and ops must be > 0")
		os.Exit(1)
	}

	switch *kind {
	case "stack":
		s, ok := cds.BuildStack[int](*algo)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown stack algo %q (known: %v)\n", *algo, cds.StackAlgos())
			os.Exit(1)
		}
		runStack(cds.StackLabel(*algo), s, *threads, *ops)
	case "queue":
		q, ok := cds.BuildQueue[int](*algo)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown queue algo %q (known: %v)\n", *algo, cds.QueueAlgos())
			os.Exit(1)
		}
		runQueue(cds.QueueLabel(*algo), q, *threads, *ops)
	default:
		fmt.Fprintf(os.Stderr, "unknown kind %q (known: stack, queue)\n", *kind)
		os.Exit(1)
	}
}
