package health

import "context"

// Pinger checks availability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NarratorChecker checks availability of the report model provider.
type NarratorChecker interface {
	HealthCheck(ctx context.Context) error
}
