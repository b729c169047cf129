package exiftool

import (
	"context"
	"errors"
	"sync"
)

// Pool lends supervisors to workers. A borrowed supervisor is exclusively
// owned until Release; each child process therefore serves one goroutine at
// a time.
type Pool struct {
	free chan *Supervisor

	mu     sync.Mutex
	all    []*Supervisor
	closed bool
}

// NewPool creates size supervisors with newSupervisor. Processes start on
// first use.
func NewPool(size int, newSupervisor func() *Supervisor) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{free: make(chan *Supervisor, size)}
	for i := 0; i < size; i++ {
		s := newSupervisor()
		p.all = append(p.all, s)
		p.free <- s
	}
	return p
}

// Size returns the number of supervisors in the pool.
func (p *Pool) Size() int {
	return cap(p.free)
}

// Acquire blocks until a supervisor is free or ctx ends.
func (p *Pool) Acquire(ctx context.Context) (*Supervisor, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, errors.New("exiftool pool closed")
	}
	select {
	case s := <-p.free:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns s to the pool.
func (p *Pool) Release(s *Supervisor) {
	if s == nil {
		return
	}
	p.free <- s
}

// Close shuts down every child. Callers must have released their
// supervisors.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	all := p.all
	p.mu.Unlock()

	var errs []error
	for _, s := range all {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
