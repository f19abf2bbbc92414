package remote

import (
	"sync"

	"github.com/google/uuid"
)

// AuthEvent names a session transition
type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthChangeFunc receives session transitions. session is nil on sign-out.
type AuthChangeFunc func(event AuthEvent, session *Session)

// Subscription is a registered auth-change listener
type Subscription struct {
	ID   string
	once sync.Once
	stop func()
}

// Unsubscribe releases the listener. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
}

// Broadcaster fans auth events out to subscribers. Auth implementations embed it.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[string]AuthChangeFunc
}

// Subscribe registers fn and returns its subscription
func (b *Broadcaster) Subscribe(fn AuthChangeFunc) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.listeners == nil {
		b.listeners = make(map[string]AuthChangeFunc)
	}

	id := uuid.NewString()
	b.listeners[id] = fn

	return &Subscription{
		ID: id,
		stop: func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		},
	}
}

// Emit calls every listener synchronously, outside the lock
func (b *Broadcaster) Emit(event AuthEvent, session *Session) {
	b.mu.RLock()
	fns := make([]AuthChangeFunc, 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(event, session)
	}
}

// Len returns the number of active listeners
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
