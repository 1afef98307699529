// Package memory holds in-process repositories for STORAGE_DRIVER=memory and tests.
package memory

import (
	"context"
	"sync"
)

type txKey struct{}

// Transactor serialises transactions behind one mutex. There is no rollback:
// writes made before fn fails stay applied.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}
