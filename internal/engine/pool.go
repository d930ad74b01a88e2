package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/semaphore"
)

var errNoSlot = errors.New("parse slot wait ended")

// parsePool bounds the number of files parsed at once.
type parsePool struct {
	sem *semaphore.Weighted
}

func newParsePool(workers int) *parsePool {
	return &parsePool{sem: semaphore.NewWeighted(int64(workers))}
}

// run waits for a slot and executes fn on its own goroutine. The slot is held
// until fn returns, even when ctx ends first and run has already given up.
func (p *parsePool) run(ctx context.Context, fn func() error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", errNoSlot, err)
	}

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("parser panic: %v", r)
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
