// Package usage persists usage records and the auxiliary per-installation keys.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/liquiditick/internal/db"
	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// ErrCorrupt signals a stored value that cannot be decoded.
var ErrCorrupt = errors.New("corrupt usage record")

// store is the consumer interface for usage persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, keys ...string) error
}

// Repo stores records as JSON under caller-supplied keys.
type Repo struct {
	store store
}

// New creates a usage repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Load reads a record. Missing keys return db.ErrKeyNotFound, undecodable ones ErrCorrupt.
func (r *Repo) Load(ctx context.Context, key string) (domusage.Record, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return domusage.Record{}, fmt.Errorf("usage GET %s: %w", key, err)
	}

	var dto recordDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domusage.Record{}, fmt.Errorf("usage GET %s: %w: %w", key, ErrCorrupt, err)
	}
	rec, err := dtoToRecord(dto)
	if err != nil {
		return domusage.Record{}, fmt.Errorf("usage GET %s: %w", key, err)
	}
	return rec, nil
}

// Save replaces the record at key.
func (r *Repo) Save(ctx context.Context, key string, rec domusage.Record) error {
	data, err := json.Marshal(recordToDTO(rec))
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("usage SET %s: %w", key, err)
	}
	return nil
}

// LoadEmails reads the captured email list. A missing key is an empty list.
func (r *Repo) LoadEmails(ctx context.Context, key string) ([]string, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("emails GET %s: %w", key, err)
	}

	var emails []string
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, fmt.Errorf("emails GET %s: %w: %w", key, ErrCorrupt, err)
	}
	return emails, nil
}

// SaveEmails replaces the captured email list.
func (r *Repo) SaveEmails(ctx context.Context, key string, emails []string) error {
	if emails == nil {
		emails = []string{}
	}
	data, err := json.Marshal(emails)
	if err != nil {
		return fmt.Errorf("marshal emails: %w", err)
	}
	if err := r.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("emails SET %s: %w", key, err)
	}
	return nil
}

// LoadString reads a plain string value. A missing key is "".
func (r *Repo) LoadString(ctx context.Context, key string) (string, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("GET %s: %w", key, err)
	}
	return string(data), nil
}

// SaveString writes a plain string value.
func (r *Repo) SaveString(ctx context.Context, key, value string) error {
	if err := r.store.Set(ctx, key, []byte(value)); err != nil {
		return fmt.Errorf("SET %s: %w", key, err)
	}
	return nil
}

// Delete removes keys.
func (r *Repo) Delete(ctx context.Context, keys ...string) error {
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("usage DEL: %w", err)
	}
	return nil
}
