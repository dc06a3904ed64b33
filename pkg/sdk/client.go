package liquiditick

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/liquiditick/internal/config"
	"github.com/kailas-cloud/liquiditick/internal/db"
	"github.com/kailas-cloud/liquiditick/internal/db/driver"
	opprepo "github.com/kailas-cloud/liquiditick/internal/repository/opportunity"
	"github.com/kailas-cloud/liquiditick/internal/repository/oppcache"
	tierrepo "github.com/kailas-cloud/liquiditick/internal/repository/tier"
	usagerepo "github.com/kailas-cloud/liquiditick/internal/repository/usage"
	openaiNarrator "github.com/kailas-cloud/liquiditick/internal/transport/openai"
	"github.com/kailas-cloud/liquiditick/internal/usecase/export"
	gateuc "github.com/kailas-cloud/liquiditick/internal/usecase/gate"
	healthuc "github.com/kailas-cloud/liquiditick/internal/usecase/health"
	reportuc "github.com/kailas-cloud/liquiditick/internal/usecase/report"
	usageuc "github.com/kailas-cloud/liquiditick/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultNarratorTimeout  = 15 * time.Second
	defaultNarratorTokens   = 256
)

// Client is the liquiditick SDK entry point. It is safe for concurrent use.
type Client struct {
	store    db.Store
	usage    *usageuc.Service
	tiers    *tierrepo.Repo
	gate     *gateuc.Service
	health   *healthuc.Service
	closeSrc func() error
	obs      *observer
}

// New creates a Client and waits for the usage store to answer.
// The provided context is used for the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("liquiditick: store not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "":
		return nil, errors.New("liquiditick: store required (use WithRedis, WithValkey or WithMemory)")
	case config.DriverRedis, config.DriverValkey:
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, fmt.Errorf("liquiditick: %s address required", cfg.driver)
		}
	}
	s, err := driver.Open(config.StorageConfig{
		Driver:   cfg.driver,
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("liquiditick: %w", err)
	}
	return s, nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	// Internal layers log through zap; the SDK logs through its observer only.
	nop := zap.NewNop()

	var (
		source   gateuc.Source = offlineSource{}
		pinger   healthuc.Pinger
		closeSrc func() error
	)
	switch {
	case cfg.source != nil:
		source = &sourceAdapter{inner: cfg.source}
	case cfg.sqliteDSN != "":
		repo, err := opprepo.Open(cfg.sqliteDSN, cfg.autoMigrate, nop)
		if err != nil {
			return nil, fmt.Errorf("liquiditick: %w", err)
		}
		source, closeSrc = repo, repo.Close
		if repo.Online() {
			pinger = repo
		}
	}
	if cfg.cacheTTL > 0 {
		source = oppcache.New(source, store, cfg.prefix, cfg.cacheTTL, nil, nop)
	}
	source = gateuc.NewInstrumentedSource(source, nop)

	loc := cfg.location
	if loc == nil {
		loc = time.Local
	}

	var narrator reportuc.Narrator
	var narratorCheck healthuc.NarratorChecker
	if cfg.openAIKey != "" {
		n := openaiNarrator.NewNarrator(&openaiNarrator.Config{
			APIKey:    cfg.openAIKey,
			BaseURL:   cfg.openAIURL,
			Model:     cfg.openAIModel,
			MaxTokens: defaultNarratorTokens,
			Logger:    nop,
		})
		narrator, narratorCheck = n, n
	}
	reportOpts := []reportuc.Option{
		reportuc.WithLocation(loc),
		reportuc.WithTimeout(defaultNarratorTimeout),
	}
	if cfg.now != nil {
		reportOpts = append(reportOpts, reportuc.WithClock(cfg.now))
	}

	usageSvc := usageuc.NewService(usagerepo.New(store), usageuc.Config{
		KeyPrefix:  cfg.prefix,
		DailyLimit: cfg.dailyLimit,
		Location:   loc,
		Now:        cfg.now,
	}, nop)

	gate := gateuc.New(
		func(id string) gateuc.QuotaTracker { return usageSvc.Tracker(id) },
		source,
		export.NewCSVExporter(""),
		reportuc.New(narrator, nop, reportOpts...),
	)
	if cfg.now != nil {
		gate = gate.WithClock(cfg.now)
	}

	return &Client{
		store:    store,
		usage:    usageSvc,
		tiers:    tierrepo.New(store, cfg.prefix),
		gate:     gate,
		health:   healthuc.New(store, pinger, narratorCheck),
		closeSrc: closeSrc,
		obs:      obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.closeSrc != nil {
		_ = c.closeSrc()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks usage store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// DailyLimit returns the Free tier allowance.
func (c *Client) DailyLimit() int { return c.usage.DailyLimit() }

// Installation returns the handle of one installation.
// The ID is opaque; every persisted key is namespaced by it.
func (c *Client) Installation(id string) (*Installation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidInstallation)
	}
	return &Installation{id: id, client: c, tracker: c.usage.Tracker(id)}, nil
}

// Tokens lists known token symbols, or a fixed list while the source is offline.
func (c *Client) Tokens(ctx context.Context) ([]string, DataStatus) {
	start := time.Now()
	res := c.gate.Tokens(ctx)
	c.obs.observe("tokens", start, nil)
	return res.Tokens, DataStatus(res.Status)
}

// Stats returns platform figures, or fixed values while the source is offline.
func (c *Client) Stats(ctx context.Context) (Stats, DataStatus) {
	start := time.Now()
	res := c.gate.Stats(ctx)
	c.obs.observe("stats", start, nil)
	return Stats(res.Stats), DataStatus(res.Status)
}
