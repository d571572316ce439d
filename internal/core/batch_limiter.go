package core

// batch_limiter.go serializes import and generation batches.
//
// Batches are processed one row at a time against the store, and the
// generator's check-then-insert sequence assumes nothing else is minting
// codes at the same moment. The limiter is a semaphore sized by
// BATCH_MAX_CONCURRENT (default 1); callers that cannot get a slot within
// maxWait receive ErrTooManyBatches.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyBatches is returned when no batch slot frees up in time.
var ErrTooManyBatches = errors.New("too many batches in progress, please try again later")

const (
	DefaultMaxConcurrentBatches = 1
	DefaultBatchWait            = 30 * time.Second
)

// BatchLimiter bounds the number of batches running at once.
type BatchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
}

// NewBatchLimiter allows maxConcurrent batches; later callers wait up to
// maxWait for a slot. Non-positive arguments select the defaults.
func NewBatchLimiter(maxConcurrent int, maxWait time.Duration) *BatchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentBatches
	}
	if maxWait <= 0 {
		maxWait = DefaultBatchWait
	}
	return &BatchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it.
func (l *BatchLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-timer.C:
		return ErrTooManyBatches
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *BatchLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// BatchLimiterStatus is a point-in-time view of the limiter.
type BatchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current usage.
func (l *BatchLimiter) Status() BatchLimiterStatus {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()
	return BatchLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}

// WaitForDrain blocks until no batch is running or ctx ends. The server
// calls it during shutdown.
func (l *BatchLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Status().Active == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
