// Package nickname manages a room's queue of pre-reserved display names.
// Names are built positionally from adjective and noun lists fetched once,
// lazily, from an external provider.
package nickname

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolExhausted is returned when no nickname is available even after a
// refill attempt.
var ErrPoolExhausted = errors.New("nickname pool exhausted")

// PartsProvider supplies the raw name parts. The two lists are combined
// positionally, so the usable pool size is min(len(adjectives), len(nouns)).
type PartsProvider interface {
	FetchAdjectives(ctx context.Context) ([]string, error)
	FetchNouns(ctx context.Context) ([]string, error)
}

// Pool is a FIFO queue of display names. Take pops the front; Release pushes
// to the back, so a released name goes to a later joiner, not necessarily
// the one who held it. Safe for concurrent use; the refill is single-flight
// under the pool mutex.
type Pool struct {
	mu       sync.Mutex
	provider PartsProvider
	queue    []string
	fetched  bool
}

// NewPool creates an empty Pool backed by the given provider.
//
// Precondition: provider must be non-nil.
func NewPool(provider PartsProvider) *Pool {
	return &Pool{provider: provider}
}

// Take pops the next available nickname, refilling the pool from the
// provider on first use.
//
// Postcondition: Returns a nickname no other current holder owns, or
// ErrPoolExhausted. A provider error leaves the pool unchanged.
func (p *Pool) Take(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 && !p.fetched {
		if err := p.refill(ctx); err != nil {
			return "", err
		}
	}
	if len(p.queue) == 0 {
		return "", ErrPoolExhausted
	}

	name := p.queue[0]
	p.queue = p.queue[1:]
	return name, nil
}

// Release returns a nickname to the back of the queue.
//
// Precondition: name was previously obtained from Take.
func (p *Pool) Release(name string) {
	if name == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, name)
}

// Size returns the number of currently available nicknames.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// refill is called with p.mu held.
func (p *Pool) refill(ctx context.Context) error {
	adjectives, err := p.provider.FetchAdjectives(ctx)
	if err != nil {
		return fmt.Errorf("fetching adjectives: %w", err)
	}
	nouns, err := p.provider.FetchNouns(ctx)
	if err != nil {
		return fmt.Errorf("fetching nouns: %w", err)
	}

	n := len(adjectives)
	if len(nouns) < n {
		n = len(nouns)
	}
	for i := 0; i < n; i++ {
		p.queue = append(p.queue, adjectives[i]+" "+nouns[i])
	}
	p.fetched = true
	return nil
}
