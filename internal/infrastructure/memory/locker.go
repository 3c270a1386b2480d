package memory

import (
	"context"
	"sync"
)

// KeyedLocker un candado por ítem, creado bajo demanda y liberado cuando nadie lo usa.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

// NewKeyedLocker crea el locker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

// Lock espera el candado del ítem o la cancelación de ctx.
func (k *KeyedLocker) Lock(ctx context.Context, itemID string) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[itemID]
	if !ok {
		l = &keyedLock{sem: make(chan struct{}, 1)}
		k.locks[itemID] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(itemID, l)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			k.release(itemID, l)
		})
	}, nil
}

func (k *KeyedLocker) release(itemID string, l *keyedLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, itemID)
	}
}

// Size candados vivos (para pruebas).
func (k *KeyedLocker) Size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
