// Package mailbox implements the single-slot, latest-wins handoff
// between the producer loop and the broadcast server. It is a
// conflation slot, not a queue: a writer never blocks, and a burst of
// puts between two reads leaves only the newest sample.
package mailbox

import (
	"context"
	"sync"

	"github.com/teleopkit/go-vive/pkg/pose"
)

// Mailbox holds at most one unread sample. Put and TakeLatest are safe
// for one writer and one reader running on independent goroutines.
type Mailbox struct {
	mu     sync.Mutex
	slot   pose.Sample
	fresh  bool
	closed bool

	// wake has capacity one; a Put while the buffer is already full is
	// simply conflated, the pending wake covers it. Checking fresh under
	// mu before sleeping prevents a lost wakeup.
	wake chan struct{}
}

// New returns an empty mailbox.
func New() *Mailbox {
	return &Mailbox{wake: make(chan struct{}, 1)}
}

// Put replaces the slot with s and wakes a blocked reader. It never
// blocks and is a no-op after Close.
func (m *Mailbox) Put(s pose.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.slot = s
	m.fresh = true
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// TakeLatest returns the newest unread sample, or false if nothing has
// been put since the last take.
func (m *Mailbox) TakeLatest() (pose.Sample, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fresh {
		return pose.Sample{}, false
	}
	m.fresh = false
	return m.slot, true
}

// Wait blocks until a fresh sample is available, then takes it. It
// returns false when ctx is canceled or the mailbox is closed.
func (m *Mailbox) Wait(ctx context.Context) (pose.Sample, bool) {
	for {
		m.mu.Lock()
		if m.fresh {
			m.fresh = false
			s := m.slot
			m.mu.Unlock()
			return s, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return pose.Sample{}, false
		}
		select {
		case <-ctx.Done():
			return pose.Sample{}, false
		case <-m.wake:
		}
	}
}

// Close unblocks any waiting reader. Further puts are dropped.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.wake)
}
