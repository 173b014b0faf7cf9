package worker

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// ErrPoolStopped возвращается Submit после Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

type Job func(ctx context.Context)

// Pool фиксированный набор воркеров с очередью на каждого.
// Задачи с одинаковым ключом попадают в одну очередь и выполняются по порядку,
// задачи с разными ключами идут параллельно.
type Pool struct {
	queues []chan Job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	logger *zerolog.Logger
}

func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	queues := make([]chan Job, workers)
	for i := range queues {
		queues[i] = make(chan Job, queueSize)
	}
	return &Pool{queues: queues, logger: logger}
}

func (p *Pool) Size() int {
	return len(p.queues)
}

// Start запускает воркеров. ctx передается в каждую задачу.
func (p *Pool) Start(ctx context.Context) {
	for i, q := range p.queues {
		p.wg.Add(1)
		go func(id int, q chan Job) {
			defer p.wg.Done()
			for job := range q {
				p.run(ctx, id, job)
			}
		}(i, q)
	}
}

// Submit ставит задачу в очередь шарда key. Блокируется, пока очередь полна.
func (p *Pool) Submit(ctx context.Context, key int64, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolStopped
	}

	select {
	case p.queues[p.shard(key)] <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop закрывает очереди и ждет, пока воркеры доделают принятые задачи.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, q := range p.queues {
		close(q)
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) shard(key int64) int {
	if key < 0 {
		key = -key
	}
	return int(key % int64(len(p.queues)))
}

func (p *Pool) run(ctx context.Context, id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().
				Interface("panic", r).
				Int("worker", id).
				Str("stack", string(debug.Stack())).
				Msg("Паника в воркере")
		}
	}()
	job(ctx)
}
