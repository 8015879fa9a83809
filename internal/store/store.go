// Package store persists rooms between actions.
//
// Rooms are stored whole, hidden deck included, as JSON. Every room carries a
// version; a save must be built on the version currently stored, which keeps
// two writers from silently overwriting each other. Rooms expire once they
// have not been saved for the configured TTL.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerrooms/internal/room"
)

var (
	ErrNotFound  = errors.New("room not found")
	ErrCodeTaken = errors.New("room code already in use")
	ErrConflict  = errors.New("room was modified concurrently")
)

const (
	DefaultTTL             = 2 * time.Hour
	DefaultJanitorInterval = 5 * time.Minute

	// MemoryPath selects the in-memory backend in Open.
	MemoryPath = ":memory:"
)

// Store is the room persistence contract.
type Store interface {
	// Create stores a new room at version 1.
	Create(ctx context.Context, r *room.Room) error
	// Get loads a room. Missing and expired rooms return ErrNotFound.
	Get(ctx context.Context, code string) (*room.Room, error)
	// Save writes r if its version still matches, then bumps r.Version.
	Save(ctx context.Context, r *room.Room) error
	Delete(ctx context.Context, code string) error
	// Sweep removes expired rooms and returns how many went.
	Sweep(ctx context.Context) (int, error)
	// Run sweeps on the janitor interval until ctx is done.
	Run(ctx context.Context) error
	Close() error
}

// Options configure either backend.
type Options struct {
	Clock           quartz.Clock
	TTL             time.Duration
	JanitorInterval time.Duration
	Logger          *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = quartz.NewReal()
	}
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.JanitorInterval <= 0 {
		o.JanitorInterval = DefaultJanitorInterval
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.Logger = o.Logger.WithPrefix("store")
	return o
}

// Open returns the SQLite store at path, or the memory store for MemoryPath.
func Open(path string, opts Options) (Store, error) {
	if path == "" || path == MemoryPath {
		return NewMemory(opts), nil
	}
	return NewSQLite(path, opts)
}

func encode(r *room.Room) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode room %s: %w", r.Code, err)
	}
	return data, nil
}

func decode(data []byte) (*room.Room, error) {
	var r room.Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &r, nil
}

// runJanitor calls sweep every interval until ctx is cancelled.
func runJanitor(ctx context.Context, opts Options, sweep func(context.Context) (int, error)) error {
	ticker := opts.Clock.NewTicker(opts.JanitorInterval, "janitor")
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := sweep(ctx)
			if err != nil {
				opts.Logger.Warn("Expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				opts.Logger.Info("Expired idle rooms", "count", n)
			}
		}
	}
}
