// Package tasks provides a small in-process background task runner for
// fire-and-forget side effects that must not block the response path
// (usage increments, audit writes). Failures land in the log sink only.
package tasks

import (
	"context"
	"log"
	"time"
)

// Task is one named unit of background work.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Runner executes tasks on worker goroutines fed by a bounded queue.
type Runner struct {
	jobs    chan Task
	timeout time.Duration
}

// NewRunner constructs a runner with the given queue capacity.
func NewRunner(queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		jobs:    make(chan Task, queueSize),
		timeout: 30 * time.Second,
	}
}

// Start launches the worker goroutines.
func (r *Runner) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("tasks: worker shutting down.")
					return
				case t := <-r.jobs:
					tctx, cancel := context.WithTimeout(context.Background(), r.timeout)
					if err := t.Run(tctx); err != nil {
						log.Printf("tasks: %s failed: %v", t.Name, err)
					}
					cancel()
				}
			}
		}(w)
	}
}

// Enqueue schedules a task without blocking. Returns false when the queue is
// full; the task is dropped and only logged, which is acceptable for
// best-effort side effects.
func (r *Runner) Enqueue(t Task) bool {
	select {
	case r.jobs <- t:
		return true
	default:
		log.Printf("tasks: queue full, dropping %s", t.Name)
		return false
	}
}
