package usage

import (
	"context"

	domusage "github.com/kailas-cloud/liquiditick/internal/domain/usage"
)

// RecordStore persists usage records and the auxiliary keys of one installation.
type RecordStore interface {
	Load(ctx context.Context, key string) (domusage.Record, error)
	Save(ctx context.Context, key string, rec domusage.Record) error
	LoadEmails(ctx context.Context, key string) ([]string, error)
	SaveEmails(ctx context.Context, key string, emails []string) error
	LoadString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
}
