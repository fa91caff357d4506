package board

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jask/kanban/internal/storage"
)

// Load builds a store from the snapshot stored under the configured key.
// A missing snapshot yields the demo board, as does one that cannot be
// decoded (logged as a warning). Storage errors are returned so a board that
// could not be read is never overwritten by the seed.
func Load(ctx context.Context, backend storage.Storage, opts ...Option) (*Store, error) {
	o := buildOptions(opts)
	data, err := backend.Get(ctx, o.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		o.logger.WithField("key", o.key).Info("no stored board, using demo board")
		o.columns = nil
	case err != nil:
		return nil, err
	default:
		cols, derr := Decode(data)
		if derr != nil {
			o.logger.WithError(derr).WithField("key", o.key).Warn("stored board unreadable, using demo board")
			o.columns = nil
		} else {
			o.columns = cols
		}
	}
	return newStore(o), nil
}

// Persister writes the full board to storage whenever the store notifies.
// A snapshot identical to the previous write is skipped, so filter-only
// notifications cost nothing.
type Persister struct {
	ctx     context.Context
	store   *Store
	backend storage.Storage
	key     string
	log     *log.Logger
	observe func(time.Duration, error)
	remove  func()

	mu   sync.Mutex
	last []byte
	err  error
}

// NewPersister registers a persistence listener on s.
func NewPersister(ctx context.Context, s *Store, backend storage.Storage, opts ...Option) *Persister {
	o := buildOptions(opts)
	p := &Persister{
		ctx:     ctx,
		store:   s,
		backend: backend,
		key:     o.key,
		log:     o.logger,
		observe: o.observe,
	}
	p.remove = s.AddListener(p.Save)
	return p
}

// Open loads the board and attaches a persister to it.
func Open(ctx context.Context, backend storage.Storage, opts ...Option) (*Store, *Persister, error) {
	s, err := Load(ctx, backend, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, NewPersister(ctx, s, backend, opts...), nil
}

// Save is the listener callback. Failures are logged and kept for Err.
func (p *Persister) Save() {
	if err := p.Flush(); err != nil {
		p.log.WithError(err).WithField("key", p.key).Error("failed to persist board")
	}
}

// Flush writes the current board unless it matches the last write. The
// snapshot is taken under the persister lock so concurrent flushes write in
// the order they observed the board.
func (p *Persister) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, err := p.store.Snapshot()
	if err != nil {
		p.err = err
		p.report(0, err)
		return err
	}
	if p.last != nil && bytes.Equal(p.last, data) {
		return nil
	}
	start := time.Now()
	err = p.backend.Set(p.ctx, p.key, data)
	if err == nil {
		p.last = data
	}
	p.err = err
	p.report(time.Since(start), err)
	return err
}

func (p *Persister) report(d time.Duration, err error) {
	if p.observe != nil {
		p.observe(d, err)
	}
}

// Err returns the outcome of the most recent write attempt.
func (p *Persister) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close detaches the persister from the store.
func (p *Persister) Close() {
	p.remove()
}
