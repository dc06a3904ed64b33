package usage

import (
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/domain"
)

const lockStripes = 64

// Config holds the tracker parameters shared by every installation.
type Config struct {
	KeyPrefix  string
	DailyLimit int
	Location   *time.Location
	Now        func() time.Time
}

// Service builds trackers for installations. Trackers for the same
// installation share a lock, so concurrent requests within one process
// cannot lose increments. Separate processes sharing a store still can.
type Service struct {
	store  RecordStore
	cfg    Config
	logger *zap.Logger
	locks  [lockStripes]sync.Mutex
}

// NewService creates a Service. Zero config fields take defaults.
func NewService(store RecordStore, cfg Config, logger *zap.Logger) *Service {
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = DefaultDailyLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cfg: cfg, logger: logger}
}

// DailyLimit returns the free-tier allowance.
func (s *Service) DailyLimit() int { return s.cfg.DailyLimit }

// Tracker returns the tracker of one installation.
func (s *Service) Tracker(installationID string) *Tracker {
	return NewTracker(
		s.store,
		domain.NewInstallationKeys(s.cfg.KeyPrefix, installationID),
		s.cfg.DailyLimit,
		WithClock(s.cfg.Now),
		WithLocation(s.cfg.Location),
		WithLogger(s.logger.With(zap.String("installation_id", installationID))),
		WithLocker(s.lockFor(installationID)),
	)
}

func (s *Service) lockFor(installationID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(installationID))
	return &s.locks[h.Sum32()%lockStripes]
}
