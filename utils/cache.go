package utils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"smpverify/model"
)

// DefaultReviewTTL is how long an opened review modal stays valid.
const DefaultReviewTTL = 5 * time.Minute

// PendingReviews keeps /rev state until the modal is submitted.
type PendingReviews struct {
	mu    sync.RWMutex
	items map[string]model.PendingReview
	ttl   time.Duration
	now   func() time.Time
}

func NewPendingReviews(ttl time.Duration) *PendingReviews {
	if ttl <= 0 {
		ttl = DefaultReviewTTL
	}
	return &PendingReviews{
		items: make(map[string]model.PendingReview),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Add stores review and returns its id.
func (p *PendingReviews) Add(review model.PendingReview) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := uuid.New().String()
	review.CreatedAt = p.now()
	p.items[id] = review
	return id
}

// Get returns the review for id unless it expired.
func (p *PendingReviews) Get(id string) (model.PendingReview, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	review, found := p.items[id]
	if !found || p.expired(review) {
		return model.PendingReview{}, false
	}
	return review, true
}

func (p *PendingReviews) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.items, id)
}

func (p *PendingReviews) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// Run deletes expired entries every interval until ctx is done.
func (p *PendingReviews) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purge()
		}
	}
}

func (p *PendingReviews) purge() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, review := range p.items {
		if p.expired(review) {
			delete(p.items, id)
		}
	}
}

func (p *PendingReviews) expired(review model.PendingReview) bool {
	return p.now().Sub(review.CreatedAt) > p.ttl
}
