package scoring

import "sync"

// inningsLocks serializes mutations per innings. Delivery submissions and
// undos for the same innings take the same mutex; different matches proceed
// in parallel.
type inningsLocks struct {
	locks sync.Map // uint -> *sync.Mutex
}

func newInningsLocks() *inningsLocks { return &inningsLocks{} }

// Lock acquires the mutex for the innings and returns its unlock func.
func (l *inningsLocks) Lock(inningsID uint) func() {
	v, _ := l.locks.LoadOrStore(inningsID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
