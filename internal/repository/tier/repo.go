// Package tier persists the per-installation subscription flag.
package tier

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/domain"
	domtier "github.com/kailas-cloud/liquiditick/internal/domain/tier"
)

// store is the consumer interface for tier persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo reads and writes the tier flag under <prefix>tier:<installation>.
type Repo struct {
	store  store
	prefix string
}

// New creates a tier repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Get returns the stored tier. A missing flag is Free.
func (r *Repo) Get(ctx context.Context, installationID string) (domtier.Tier, error) {
	key := r.key(installationID)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domtier.Free, nil
		}
		return domtier.Free, fmt.Errorf("tier GET %s: %w", key, err)
	}
	return domtier.Parse(string(data)), nil
}

// Set writes the tier flag.
func (r *Repo) Set(ctx context.Context, installationID string, t domtier.Tier) error {
	key := r.key(installationID)
	if err := r.store.Set(ctx, key, []byte(t.String())); err != nil {
		return fmt.Errorf("tier SET %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(installationID string) string {
	return domain.NewInstallationKeys(r.prefix, installationID).Tier
}
