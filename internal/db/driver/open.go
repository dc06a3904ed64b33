// Package driver opens the configured db.Store implementation.
package driver

import (
	"fmt"

	"github.com/kailas-cloud/liquiditick/internal/config"
	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/db/memory"
	dbRedis "github.com/kailas-cloud/liquiditick/internal/db/redis"
)

// Open creates the key-value store for cfg.Driver.
// The memory driver keeps data for the life of the process only.
func Open(cfg config.StorageConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", cfg.Driver, err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
