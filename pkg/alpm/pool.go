package alpm

import (
	"context"
	"sync"
	"time"

	"github.com/th3gh0s8/aura/pkg/errors"
)

// DefaultLeaseTimeout bounds how long a Lease call waits for a free handle.
// Recursive resolution leases at most one handle per task and releases it
// before recursing, so a long wait here indicates a leak rather than load.
const DefaultLeaseTimeout = 30 * time.Second

// Pool is a fixed-size pool of database handles, safe for concurrent
// leasing from many goroutines.
type Pool struct {
	handles chan DB
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	size   int
}

// NewPool opens size handles with open and returns the filled pool.
// If any open fails, previously opened handles are closed and the error is
// returned. A leaseTimeout of zero selects [DefaultLeaseTimeout].
func NewPool(open func() (DB, error), size int, leaseTimeout time.Duration) (*Pool, error) {
	if size <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pool size must be positive, got %d", size)
	}
	if leaseTimeout <= 0 {
		leaseTimeout = DefaultLeaseTimeout
	}

	p := &Pool{
		handles: make(chan DB, size),
		timeout: leaseTimeout,
		size:    size,
	}
	for i := 0; i < size; i++ {
		db, err := open()
		if err != nil {
			_ = p.Close()
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "opening database handle %d of %d", i+1, size)
		}
		p.handles <- db
	}
	return p, nil
}

// Size returns the pool capacity.
func (p *Pool) Size() int { return p.size }

// Idle returns the number of currently unleased handles.
func (p *Pool) Idle() int { return len(p.handles) }

// Lease borrows a handle, blocking until one frees up, the context is
// cancelled, or the lease timeout elapses. The returned release function
// must be called on every exit path; calling it more than once is safe.
func (p *Pool) Lease(ctx context.Context) (DB, func(), error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, nil, errors.New(errors.ErrCodePoolClosed, "database pool is closed")
	}
	p.mu.Unlock()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case db, ok := <-p.handles:
		if !ok {
			return nil, nil, errors.New(errors.ErrCodePoolClosed, "database pool is closed")
		}
		var once sync.Once
		release := func() {
			once.Do(func() { p.put(db) })
		}
		return db, release, nil
	case <-ctx.Done():
		return nil, nil, errors.Wrap(errors.ErrCodePoolTimeout, ctx.Err(), "waiting for a database handle")
	case <-timer.C:
		return nil, nil, errors.New(errors.ErrCodePoolTimeout, "no database handle became available within %s", p.timeout)
	}
}

// put returns a handle to the pool, or closes it if the pool shut down in
// the meantime.
func (p *Pool) put(db DB) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		_ = db.Close()
		return
	}
	p.handles <- db
}

// Close shuts the pool down and closes every idle handle. Handles still
// leased are closed as they are released. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.handles)
	p.mu.Unlock()

	var firstErr error
	for db := range p.handles {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
