package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pricewise/models"
)

// CompareFunc runs one comparison for a task
type CompareFunc func(ctx context.Context, query string) (*models.Comparison, error)

// TaskManagerOptions size the worker pool and queue
type TaskManagerOptions struct {
	Workers   int
	QueueSize int
	// Retention is how long finished tasks stay queryable
	Retention       time.Duration
	CleanupInterval time.Duration
}

// TaskManager runs comparisons off the request path on a fixed worker pool
type TaskManager struct {
	tasks     map[string]*models.CompareTask
	taskQueue chan *models.CompareTask
	compare   CompareFunc
	opts      TaskManagerOptions

	mutex   sync.RWMutex
	working int

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewTaskManager starts the workers and the cleanup loop
func NewTaskManager(compare CompareFunc, opts TaskManagerOptions) *TaskManager {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 100
	}
	if opts.Retention <= 0 {
		opts.Retention = time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	tm := &TaskManager{
		tasks:     make(map[string]*models.CompareTask),
		taskQueue: make(chan *models.CompareTask, opts.QueueSize),
		compare:   compare,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < opts.Workers; i++ {
		tm.wg.Add(1)
		go tm.worker(i)
	}
	tm.wg.Add(1)
	go tm.cleanupLoop()

	slog.Info("task manager started", "workers", opts.Workers, "queue_size", opts.QueueSize)
	return tm
}

// SubmitTask queues a comparison. When the queue is full or the manager has
// been stopped the task is returned already failed.
func (tm *TaskManager) SubmitTask(query string) *models.CompareTask {
	task := models.NewCompareTask(query)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	if tm.ctx.Err() != nil {
		task.Fail("task manager stopped")
		slog.Warn("task rejected, manager stopped", "task_id", task.ID)
		return task
	}

	select {
	case tm.taskQueue <- task:
		slog.Debug("task submitted", "task_id", task.ID, "query", query)
	default:
		task.Fail("task queue is full")
		slog.Warn("task rejected, queue full", "task_id", task.ID)
	}
	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.CompareTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// GetActiveTasks returns queued and processing tasks
func (tm *TaskManager) GetActiveTasks() []*models.CompareTask {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	var active []*models.CompareTask
	for _, task := range tm.tasks {
		if task.IsActive() {
			active = append(active, task)
		}
	}
	return active
}

// CleanupOldTasks removes finished tasks that completed more than maxAge ago
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) int {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, task := range tm.tasks {
		snap := task.Snapshot()
		if snap.CompletedAt != nil && snap.CompletedAt.Before(cutoff) {
			delete(tm.tasks, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("cleaned up old tasks", "removed", removed)
	}
	return removed
}

func (tm *TaskManager) cleanupLoop() {
	defer tm.wg.Done()
	ticker := time.NewTicker(tm.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tm.CleanupOldTasks(tm.opts.Retention)
		case <-tm.ctx.Done():
			return
		}
	}
}

func (tm *TaskManager) worker(n int) {
	defer tm.wg.Done()
	for {
		select {
		case task := <-tm.taskQueue:
			if tm.ctx.Err() != nil {
				task.Fail("task manager stopped")
				continue
			}
			tm.run(task)
		case <-tm.ctx.Done():
			slog.Debug("task worker stopped", "worker", n)
			return
		}
	}
}

func (tm *TaskManager) run(task *models.CompareTask) {
	tm.setWorking(1)
	defer tm.setWorking(-1)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "task_id", task.ID, "panic", r)
			task.Fail(fmt.Sprintf("internal error: %v", r))
		}
	}()

	task.Start()
	result, err := tm.compare(tm.ctx, task.Query)
	if err != nil {
		task.Fail("price comparison failed: " + err.Error())
		slog.Warn("task failed", "task_id", task.ID, "error", err)
		return
	}

	task.Complete(result)
	slog.Info("task completed", "task_id", task.ID, "duration", task.Duration())
}

func (tm *TaskManager) setWorking(delta int) {
	tm.mutex.Lock()
	tm.working += delta
	tm.mutex.Unlock()
}

// Stop cancels in-flight comparisons and waits for the workers to exit.
// Queued tasks are failed.
func (tm *TaskManager) Stop() {
	tm.stopOnce.Do(func() {
		slog.Info("task manager stopping")
		tm.cancel()
		tm.wg.Wait()

		for {
			select {
			case task := <-tm.taskQueue:
				task.Fail("task manager stopped")
			default:
				return
			}
		}
	})
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.State())]++
	}

	return map[string]interface{}{
		"total_tasks":     len(tm.tasks),
		"active_workers":  tm.working,
		"max_workers":     tm.opts.Workers,
		"queue_size":      len(tm.taskQueue),
		"tasks_by_status": statusCounts,
	}
}
