package offline

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Probe reports whether the remote service is reachable and notifies
// subscribers when it becomes reachable after being unreachable.
type Probe interface {
	IsReachable() bool
	OnBecameReachable(fn func()) (unsubscribe func())
}

// listeners is a registry of became-reachable callbacks.
type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

func (l *listeners) add(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
		})
	}
}

// fire calls every callback in registration order, outside the lock.
func (l *listeners) fire() {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ManualProbe is a Probe whose state is set by the caller. Callbacks run
// synchronously inside Set on the unreachable to reachable transition.
type ManualProbe struct {
	reachable atomic.Bool
	subs      listeners
}

var _ Probe = (*ManualProbe)(nil)

// NewManualProbe returns a probe starting in the given state.
func NewManualProbe(reachable bool) *ManualProbe {
	p := &ManualProbe{}
	p.reachable.Store(reachable)
	return p
}

// IsReachable reports the current state.
func (p *ManualProbe) IsReachable() bool { return p.reachable.Load() }

// OnBecameReachable registers fn.
func (p *ManualProbe) OnBecameReachable(fn func()) func() { return p.subs.add(fn) }

// Set changes the state, firing callbacks if it became reachable.
func (p *ManualProbe) Set(reachable bool) {
	if prev := p.reachable.Swap(reachable); !prev && reachable {
		p.subs.fire()
	}
}
