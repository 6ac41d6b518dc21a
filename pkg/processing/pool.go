package processing

import (
	"sync"
	"time"

	customlog "github.com/open-teleop/movingheads/pkg/log"
)

// job is one task of a batch plus the barrier it reports to.
type job struct {
	task func()
	done *sync.WaitGroup
}

// WorkerPool runs batches of independent tasks on a fixed set of workers.
// Execute blocks until every task of the batch has finished, which makes
// each call a barrier.
type WorkerPool struct {
	name        string
	workerCount int
	logger      customlog.Logger
	jobs        chan job
	running     bool
	wg          sync.WaitGroup
	mu          sync.Mutex
	metrics     *PoolMetrics
}

// PoolMetrics tracks metrics for a worker pool
type PoolMetrics struct {
	BatchCount    int64
	TaskCount     int64
	LastBatchTime int64
	BatchTimeAvg  int64 // in microseconds
	BatchTimeMax  int64 // in microseconds
	InlineBatches int64
	mu            sync.Mutex
}

// NewWorkerPool creates a new worker pool. A workerCount below 1 means one
// worker.
func NewWorkerPool(name string, workerCount int, logger customlog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = customlog.NewDiscardLogger()
	}
	return &WorkerPool{
		name:        name,
		workerCount: workerCount,
		logger:      logger,
		metrics:     &PoolMetrics{},
	}
}

// Start starts the pool workers
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.jobs = make(chan job, p.workerCount)
	p.logger.Infof("Starting %s pool with %d workers", p.name, p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, p.jobs)
	}
}

// Stop stops the pool. Batches submitted afterwards run inline.
func (p *WorkerPool) Stop() {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		return
	}

	p.running = false
	close(p.jobs)
	p.mu.Unlock()

	p.logger.Infof("Stopping %s pool", p.name)

	p.wg.Wait()
	p.logger.Infof("%s pool stopped", p.name)

	p.logMetrics()
}

// Execute runs tasks on the workers and waits for all of them. When the pool
// is not running the tasks run on the calling goroutine.
func (p *WorkerPool) Execute(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	startTime := time.Now()

	// Hold the lock while submitting so Stop cannot close the channel under us.
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		for _, task := range tasks {
			task()
		}
		p.record(len(tasks), startTime, true)
		return
	}

	var batch sync.WaitGroup
	batch.Add(len(tasks))
	for _, task := range tasks {
		p.jobs <- job{task: task, done: &batch}
	}
	p.mu.Unlock()

	batch.Wait()
	p.record(len(tasks), startTime, false)
}

// worker runs jobs until the channel is closed
func (p *WorkerPool) worker(id int, jobs <-chan job) {
	defer p.wg.Done()

	p.logger.Debugf("%s pool worker %d started", p.name, id)

	for j := range jobs {
		j.task()
		j.done.Done()
	}

	p.logger.Debugf("%s pool worker %d stopped", p.name, id)
}

func (p *WorkerPool) record(tasks int, startTime time.Time, inline bool) {
	batchTime := time.Since(startTime).Microseconds()

	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	p.metrics.BatchCount++
	p.metrics.TaskCount += int64(tasks)
	p.metrics.LastBatchTime = time.Now().UnixNano()
	if inline {
		p.metrics.InlineBatches++
	}

	if p.metrics.BatchTimeAvg == 0 {
		p.metrics.BatchTimeAvg = batchTime
	} else {
		// Simple moving average
		p.metrics.BatchTimeAvg = (p.metrics.BatchTimeAvg + batchTime) / 2
	}
	if batchTime > p.metrics.BatchTimeMax {
		p.metrics.BatchTimeMax = batchTime
	}
}

// GetMetrics returns a copy of the current metrics
func (p *WorkerPool) GetMetrics() PoolMetrics {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	return PoolMetrics{
		BatchCount:    p.metrics.BatchCount,
		TaskCount:     p.metrics.TaskCount,
		LastBatchTime: p.metrics.LastBatchTime,
		BatchTimeAvg:  p.metrics.BatchTimeAvg,
		BatchTimeMax:  p.metrics.BatchTimeMax,
		InlineBatches: p.metrics.InlineBatches,
	}
}

// logMetrics logs the current metrics
func (p *WorkerPool) logMetrics() {
	metrics := p.GetMetrics()

	p.logger.Infof("%s pool metrics: batches=%d, tasks=%d, avg_time=%dµs, max_time=%dµs",
		p.name, metrics.BatchCount, metrics.TaskCount,
		metrics.BatchTimeAvg, metrics.BatchTimeMax)
}

// GetName returns the pool name
func (p *WorkerPool) GetName() string {
	return p.name
}

// GetWorkerCount returns the number of workers
func (p *WorkerPool) GetWorkerCount() int {
	return p.workerCount
}

// IsRunning reports whether the workers are up
func (p *WorkerPool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
