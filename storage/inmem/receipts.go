package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
)

type Receipts struct {
	mu    sync.Mutex
	locks map[string]time.Time // key -> lock expiry
	sent  map[string]time.Time
}

var _ invite.ReceiptStore = (*Receipts)(nil)

func NewReceipts() *Receipts {
	return &Receipts{
		locks: make(map[string]time.Time),
		sent:  make(map[string]time.Time),
	}
}

func (r *Receipts) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := core.NowFunc()
	if exp, ok := r.locks[key]; ok && now.Before(exp) {
		return false, nil
	}
	r.locks[key] = now.Add(ttl)
	return true, nil
}

func (r *Receipts) Unlock(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, key)
	return nil
}

func (r *Receipts) Sent(_ context.Context, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sent[key]
	return ok, nil
}

func (r *Receipts) MarkSent(_ context.Context, key string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[key] = at
	return nil
}
