package supervisor

import (
	"sync"

	"github.com/wagiedev/selenium-grid-go/internal/config"
)

// outputQueue hands lines to the output callback in arrival order on a
// goroutine of its own. The readers draining a child's pipes never wait for
// the callback, so the callback may call Stop.
type outputQueue struct {
	fn func(config.Line)

	mu      sync.Mutex
	pending []config.Line
	running bool
}

func newOutputQueue(fn func(config.Line)) *outputQueue {
	return &outputQueue{fn: fn}
}

func (q *outputQueue) push(line config.Line) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = append(q.pending, line)

	if !q.running {
		q.running = true

		go q.drain()
	}
}

// drain delivers until the queue is empty. At most one drain runs at a time.
func (q *outputQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()

			return
		}

		line := q.pending[0]
		q.pending[0] = config.Line{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.fn(line)
	}
}
