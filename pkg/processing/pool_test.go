package processing

import (
	"sync/atomic"
	"testing"
)

func TestWorkerPoolExecuteIsBarrier(t *testing.T) {
	pool := NewWorkerPool("solve", 4, nil)
	pool.Start()
	defer pool.Stop()

	results := make([]int, 100)
	tasks := make([]func(), len(results))
	for i := range tasks {
		i := i
		tasks[i] = func() { results[i] = i * i }
	}

	pool.Execute(tasks)

	for i, v := range results {
		if v != i*i {
			t.Fatalf("result %d = %d after Execute returned, want %d", i, v, i*i)
		}
	}

	m := pool.GetMetrics()
	if m.BatchCount != 1 || m.TaskCount != 100 || m.InlineBatches != 0 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestWorkerPoolRunsInlineWhenStopped(t *testing.T) {
	pool := NewWorkerPool("solve", 2, nil)

	var n int32
	pool.Execute([]func(){
		func() { atomic.AddInt32(&n, 1) },
		func() { atomic.AddInt32(&n, 1) },
	})
	if n != 2 {
		t.Errorf("ran %d tasks, want 2", n)
	}

	pool.Start()
	pool.Stop()
	pool.Execute([]func(){func() { atomic.AddInt32(&n, 1) }})
	if n != 3 {
		t.Errorf("ran %d tasks, want 3", n)
	}
	if got := pool.GetMetrics().InlineBatches; got != 2 {
		t.Errorf("InlineBatches = %d, want 2", got)
	}
}

func TestWorkerPoolManyBatches(t *testing.T) {
	pool := NewWorkerPool("solve", 3, nil)
	pool.Start()
	defer pool.Stop()

	var total int64
	for b := 0; b < 50; b++ {
		tasks := make([]func(), 7)
		for i := range tasks {
			tasks[i] = func() { atomic.AddInt64(&total, 1) }
		}
		pool.Execute(tasks)
		if got := atomic.LoadInt64(&total); got != int64((b+1)*7) {
			t.Fatalf("batch %d: total %d, want %d", b, got, (b+1)*7)
		}
	}
}

func TestNewWorkerPoolDefaults(t *testing.T) {
	pool := NewWorkerPool("solve", 0, nil)
	if pool.GetWorkerCount() != 1 || pool.GetName() != "solve" || pool.IsRunning() {
		t.Errorf("unexpected pool state")
	}
}
