package queue

import (
	"context"
	"fmt"
	"sync"

	"stream-compiler-service/ddd/domain/entity"
)

// JobQueue 合成作业队列接口
type JobQueue interface {
	// Enqueue 入队作业，队列满时立即报错不阻塞
	Enqueue(ctx context.Context, job *entity.CompileJobEntity) error

	// Dequeue 出队作业（阻塞）
	Dequeue(ctx context.Context) (*entity.CompileJobEntity, error)

	// TryDequeue 尝试出队作业（非阻塞）
	TryDequeue(ctx context.Context) (*entity.CompileJobEntity, error)

	// Size 获取队列大小
	Size() int

	// Close 关闭队列
	Close() error

	// IsClosed 检查队列是否已关闭
	IsClosed() bool
}

// MemoryJobQueue 基于内存的作业队列实现
type MemoryJobQueue struct {
	queue    chan *entity.CompileJobEntity
	closed   bool
	mu       sync.RWMutex
	maxSize  int
	counters queueCounters
}

// QueueMetrics 队列指标快照，不含锁可安全复制
type QueueMetrics struct {
	EnqueueCount uint64
	DequeueCount uint64
	MaxSize      int
	CurrentSize  int
}

// queueCounters 队列累计计数
type queueCounters struct {
	mu           sync.Mutex
	enqueueCount uint64
	dequeueCount uint64
}

// NewMemoryJobQueue 创建内存作业队列
func NewMemoryJobQueue(capacity int) JobQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryJobQueue{
		queue:   make(chan *entity.CompileJobEntity, capacity),
		maxSize: capacity,
	}
}

// Enqueue 入队作业
func (q *MemoryJobQueue) Enqueue(ctx context.Context, job *entity.CompileJobEntity) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}
	if job == nil {
		return fmt.Errorf("job cannot be nil")
	}

	select {
	case q.queue <- job:
		q.updateEnqueueMetrics()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("queue is full")
	}
}

// Dequeue 出队作业（阻塞）
func (q *MemoryJobQueue) Dequeue(ctx context.Context) (*entity.CompileJobEntity, error) {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, fmt.Errorf("queue is closed")
	}
	ch := q.queue
	q.mu.RUnlock()

	select {
	case job, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("queue is closed")
		}
		q.updateDequeueMetrics()
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryDequeue 尝试出队作业（非阻塞）
func (q *MemoryJobQueue) TryDequeue(ctx context.Context) (*entity.CompileJobEntity, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return nil, fmt.Errorf("queue is closed")
	}

	select {
	case job := <-q.queue:
		q.updateDequeueMetrics()
		return job, nil
	default:
		return nil, nil
	}
}

// Size 获取队列大小
func (q *MemoryJobQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return 0
	}
	return len(q.queue)
}

// Close 关闭队列
func (q *MemoryJobQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.queue)
	return nil
}

// IsClosed 检查队列是否已关闭
func (q *MemoryJobQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// GetMetrics 获取队列指标快照
func (q *MemoryJobQueue) GetMetrics() QueueMetrics {
	q.counters.mu.Lock()
	enqueued, dequeued := q.counters.enqueueCount, q.counters.dequeueCount
	q.counters.mu.Unlock()

	return QueueMetrics{
		EnqueueCount: enqueued,
		DequeueCount: dequeued,
		MaxSize:      q.maxSize,
		CurrentSize:  q.Size(),
	}
}

func (q *MemoryJobQueue) updateEnqueueMetrics() {
	q.counters.mu.Lock()
	defer q.counters.mu.Unlock()
	q.counters.enqueueCount++
}

func (q *MemoryJobQueue) updateDequeueMetrics() {
	q.counters.mu.Lock()
	defer q.counters.mu.Unlock()
	q.counters.dequeueCount++
}
