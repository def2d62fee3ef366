package auth

import (
	"sync"

	"github.com/fastygo/contentflow/domain"
)

// Event is an authentication state change.
type Event string

const (
	EventSignedIn  Event = "SIGNED_IN"
	EventSignedOut Event = "SIGNED_OUT"
)

// Listener receives auth changes; session is nil on sign-out.
type Listener func(event Event, session *domain.Session)

type listeners struct {
	mu   sync.RWMutex
	next int
	fns  map[int]Listener
}

func (l *listeners) add(fn Listener) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]Listener)
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// publish calls listeners outside the lock so they may unsubscribe.
func (l *listeners) publish(event Event, session *domain.Session) {
	l.mu.RLock()
	fns := make([]Listener, 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		var snapshot *domain.Session
		if session != nil {
			copied := *session
			snapshot = &copied
		}
		fn(event, snapshot)
	}
}
