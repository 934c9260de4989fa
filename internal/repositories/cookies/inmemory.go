package cookies

import (
	"context"
	"sync"
	"time"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/clock"
)

type storedCookie struct {
	value     string
	expiresAt time.Time
}

type inMemoryRepository struct {
	mu      sync.RWMutex
	cookies map[string]storedCookie
	clock   clock.Clock
	ttl     time.Duration
}

// InMemoryConfig contains configuration for the in-memory cookie repository
type InMemoryConfig struct {
	Clock clock.Clock
	// TTL defaults to DefaultTTL
	TTL time.Duration
}

// NewInMemory creates a process-local cookie repository. Nothing survives a
// restart, which suits tests and the play loop's throwaway sessions.
func NewInMemory(cfg *InMemoryConfig) Repository {
	if cfg == nil {
		cfg = &InMemoryConfig{}
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &inMemoryRepository{
		cookies: make(map[string]storedCookie),
		clock:   c,
		ttl:     ttl,
	}
}

func (r *inMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	r.mu.RLock()
	stored, ok := r.cookies[input.SessionID]
	r.mu.RUnlock()

	if !ok || !r.clock.Now().Before(stored.expiresAt) {
		return nil, errors.NotFoundf("no cookie stored for session %s", input.SessionID)
	}
	return &GetOutput{Value: stored.value, ExpiresAt: stored.expiresAt}, nil
}

func (r *inMemoryRepository) Save(_ context.Context, input SaveInput) (*SaveOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	expiresAt := r.clock.Now().Add(r.ttl)

	r.mu.Lock()
	r.cookies[input.SessionID] = storedCookie{value: input.Value, expiresAt: expiresAt}
	r.mu.Unlock()

	return &SaveOutput{ExpiresAt: expiresAt}, nil
}

func (r *inMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	r.mu.Lock()
	delete(r.cookies, input.SessionID)
	r.mu.Unlock()

	return &DeleteOutput{}, nil
}
