package leads

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Writer is the public intake side of the store. Implementations must run
// under the restricted credential, which cannot read rows back.
type Writer interface {
	Insert(ctx context.Context, c *Candidate) (*Lead, error)
}

// Reader is the admin side of the store, run under the elevated credential.
type Reader interface {
	List(ctx context.Context) ([]*Lead, error)
}

// InMemoryRepository keeps leads in process memory. Used by tests and local runs.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads []*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return NewInMemoryRepositoryWithClock(time.Now)
}

// NewInMemoryRepositoryWithClock lets tests control created_at.
func NewInMemoryRepositoryWithClock(now func() time.Time) *InMemoryRepository {
	if now == nil {
		now = time.Now
	}
	return &InMemoryRepository{now: now}
}

// Insert stores a copy of the candidate and returns the stored row.
func (r *InMemoryRepository) Insert(ctx context.Context, c *Candidate) (*Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "insert", Err: err}
	}
	lead := &Lead{
		ID:           uuid.NewString(),
		Name:         c.Name,
		Email:        c.Email,
		Phone:        c.Phone,
		DiscountCode: c.discountCode(),
		CreatedAt:    r.now().UTC(),
	}

	r.mu.Lock()
	r.leads = append(r.leads, lead)
	r.mu.Unlock()

	out := *lead
	return &out, nil
}

// List returns every lead, newest first. Equal timestamps keep the later insert first.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	r.mu.RLock()
	out := make([]*Lead, 0, len(r.leads))
	for i := len(r.leads) - 1; i >= 0; i-- {
		lead := *r.leads[i]
		out = append(out, &lead)
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *Lead) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}
