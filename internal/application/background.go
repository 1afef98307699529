package application

import (
	"context"
	"sync"
	"time"
)

// background runs best-effort work after the request that started it has
// returned. The zero value is ready to use.
type background struct {
	wg sync.WaitGroup
}

// Go runs fn on its own goroutine with a context detached from ctx and
// bounded by timeout.
func (b *background) Go(ctx context.Context, timeout time.Duration, fn func(ctx context.Context)) {
	taskCtx, cancel := detach(ctx, timeout)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer cancel()
		fn(taskCtx)
	}()
}

// Wait blocks until every task started with Go has finished.
func (b *background) Wait() {
	b.wg.Wait()
}

// detach returns a context that ignores the request's cancellation but is
// bounded by timeout.
func detach(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, timeout)
}
