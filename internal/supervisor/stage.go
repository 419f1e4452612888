package supervisor

import (
	"sync"
	"sync/atomic"
)

// stage tracks whether one role has become ready. The first outcome wins;
// later ones are dropped.
type stage struct {
	settled atomic.Bool
	once    sync.Once
	result  chan error
}

func newStage() *stage {
	return &stage{result: make(chan error, 1)}
}

func (st *stage) settle(err error) {
	st.once.Do(func() {
		st.settled.Store(true)
		st.result <- err
	})
}

func (st *stage) isSettled() bool {
	return st.settled.Load()
}
