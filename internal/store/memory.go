package store

import (
	"context"
	"sync"
	"time"

	"github.com/lox/pokerrooms/internal/room"
)

type memoryEntry struct {
	data      []byte
	version   int64
	expiresAt time.Time
}

// Memory keeps rooms in a map. Rooms are held encoded so callers never share
// state with the store.
type Memory struct {
	opts Options

	mu    sync.Mutex
	rooms map[string]memoryEntry
}

var _ Store = (*Memory)(nil)

func NewMemory(opts Options) *Memory {
	return &Memory{
		opts:  opts.withDefaults(),
		rooms: make(map[string]memoryEntry),
	}
}

func (m *Memory) Create(_ context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Clock.Now()
	if e, ok := m.rooms[r.Code]; ok && now.Before(e.expiresAt) {
		return ErrCodeTaken
	}

	r.Version = 1
	data, err := encode(r)
	if err != nil {
		r.Version = 0
		return err
	}
	m.rooms[r.Code] = memoryEntry{data: data, version: 1, expiresAt: now.Add(m.opts.TTL)}
	return nil
}

func (m *Memory) Get(_ context.Context, code string) (*room.Room, error) {
	m.mu.Lock()
	e, ok := m.rooms[code]
	m.mu.Unlock()

	if !ok || !m.opts.Clock.Now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return decode(e.data)
}

func (m *Memory) Save(_ context.Context, r *room.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Clock.Now()
	e, ok := m.rooms[r.Code]
	if !ok || !now.Before(e.expiresAt) {
		return ErrNotFound
	}
	if e.version != r.Version {
		return ErrConflict
	}

	r.Version++
	data, err := encode(r)
	if err != nil {
		r.Version--
		return err
	}
	m.rooms[r.Code] = memoryEntry{data: data, version: r.Version, expiresAt: now.Add(m.opts.TTL)}
	return nil
}

func (m *Memory) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
	return nil
}

func (m *Memory) Sweep(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Clock.Now()
	n := 0
	for code, e := range m.rooms {
		if !now.Before(e.expiresAt) {
			delete(m.rooms, code)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Run(ctx context.Context) error {
	return runJanitor(ctx, m.opts, m.Sweep)
}

func (m *Memory) Close() error { return nil }
