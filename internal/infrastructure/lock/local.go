package lock

import (
	"context"
	"fmt"
	"sync"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// LocalLocker serializes runs inside one process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

var _ ports.RunLocker = (*LocalLocker)(nil)

// NewLocalLocker returns an empty in-process locker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]bool{}}
}

// Acquire fails with domain.ErrRunInProgress while key is held.
func (l *LocalLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunInProgress, key)
	}
	l.held[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
