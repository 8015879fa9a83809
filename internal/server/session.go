package server

import (
	"sync"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/pokerrooms/internal/room"
)

// keyedMutex serializes work per room code. Locks are dropped once nobody
// holds or waits on them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refLock)}
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// roomSession owns the single pending timer of a room: either an AI decision
// or a turn timeout. Scheduling for a new ticket stops the previous timer;
// scheduling for the ticket already pending keeps it, so the clock keeps
// running through chat and reconnects.
type roomSession struct {
	mu      sync.Mutex
	timer   *quartz.Timer
	ticket  room.Ticket
	pending bool
}

func (rs *roomSession) schedule(clock quartz.Clock, d time.Duration, ticket room.Ticket, tag string, fn func(room.Ticket)) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.pending && rs.ticket == ticket {
		return
	}
	if rs.timer != nil {
		rs.timer.Stop()
	}
	rs.ticket = ticket
	rs.pending = true
	rs.timer = clock.AfterFunc(d, func() {
		rs.mu.Lock()
		rs.pending = false
		rs.mu.Unlock()
		fn(ticket)
	}, tag)
}

func (rs *roomSession) cancel() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.timer != nil {
		rs.timer.Stop()
		rs.timer = nil
	}
	rs.pending = false
}

// Pending reports the ticket of the scheduled task, if any.
func (rs *roomSession) Pending() (room.Ticket, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.ticket, rs.pending
}
