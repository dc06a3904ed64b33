// Package opportunity reads scored rows from the scanner's SQL database.
package opportunity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domopp "github.com/kailas-cloud/liquiditick/internal/domain/opportunity"
)

// placeholderMarkers identify DSNs copied from setup docs without being filled in.
var placeholderMarkers = []string{"your-project-id", "your_project_id", "placeholder", "changeme"}

// IsConfigured reports whether dsn points at a real database.
func IsConfigured(dsn string) bool {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return false
	}
	lower := strings.ToLower(dsn)
	for _, m := range placeholderMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}

// Repo implements the opportunity data source over gorm.
// A Repo without a database answers every call with domopp.ErrUnavailable.
type Repo struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to dsn. Unconfigured DSNs yield an offline Repo, not an error.
// With migrate set, the tables are created when missing.
func Open(dsn string, migrate bool, logger *zap.Logger) (*Repo, error) {
	if !IsConfigured(dsn) {
		logger.Warn("Opportunity database not configured, running in demo mode")
		return &Repo{logger: logger}, nil
	}

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open opportunity database: %w", err)
	}

	if migrate {
		if err := gdb.AutoMigrate(&opportunityModel{}, &platformStatsModel{}); err != nil {
			return nil, fmt.Errorf("migrate opportunity database: %w", err)
		}
	}

	return &Repo{db: gdb, logger: logger}, nil
}

// Online reports whether a database is attached.
func (r *Repo) Online() bool { return r.db != nil }

// Fetch returns rows matching f, highest score first, at most domopp.PageSize.
func (r *Repo) Fetch(ctx context.Context, f domopp.Filters) ([]domopp.Row, error) {
	if r.db == nil {
		return nil, domopp.ErrUnavailable
	}

	q := r.db.WithContext(ctx).Model(&opportunityModel{})
	if f.TokenSymbol != "" {
		q = q.Where("LOWER(base_token_symbol) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(f.TokenSymbol))+"%")
	}
	if f.MinScore != nil {
		q = q.Where("score >= ?", *f.MinScore)
	}
	if f.MinVolume != nil {
		q = q.Where("volume_24h >= ?", *f.MinVolume)
	}
	if f.MinLiquidity != nil {
		q = q.Where("liquidity >= ?", *f.MinLiquidity)
	}
	if f.Type != "" {
		q = q.Where("opportunity_type = ?", string(f.Type))
	}

	var models []opportunityModel
	if err := q.Order("score DESC").Limit(domopp.PageSize).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%w: query opportunities: %w", domopp.ErrUnavailable, err)
	}

	rows := make([]domopp.Row, len(models))
	for i, m := range models {
		rows[i] = modelToRow(m)
	}
	return rows, nil
}

// Tokens returns the distinct token symbols, sorted.
func (r *Repo) Tokens(ctx context.Context) ([]string, error) {
	if r.db == nil {
		return nil, domopp.ErrUnavailable
	}

	var symbols []string
	err := r.db.WithContext(ctx).
		Model(&opportunityModel{}).
		Distinct("base_token_symbol").
		Order("base_token_symbol").
		Pluck("base_token_symbol", &symbols).Error
	if err != nil {
		return nil, fmt.Errorf("%w: query tokens: %w", domopp.ErrUnavailable, err)
	}
	return symbols, nil
}

// Stats returns the platform figures row.
func (r *Repo) Stats(ctx context.Context) (domopp.Stats, error) {
	if r.db == nil {
		return domopp.Stats{}, domopp.ErrUnavailable
	}

	var m platformStatsModel
	if err := r.db.WithContext(ctx).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domopp.Stats{}, fmt.Errorf("%w: platform stats empty", domopp.ErrUnavailable)
		}
		return domopp.Stats{}, fmt.Errorf("%w: query stats: %w", domopp.ErrUnavailable, err)
	}
	return domopp.Stats{
		WinRate:        m.WinRate,
		AvgReturn:      m.AvgReturn,
		Subscribers:    m.Subscribers,
		MonthlyRevenue: m.MonthlyRevenue,
	}, nil
}

// Insert appends rows. Used by seeding tools and tests; the scanner owns production writes.
func (r *Repo) Insert(ctx context.Context, rows []domopp.Row) error {
	if r.db == nil {
		return domopp.ErrUnavailable
	}
	if len(rows) == 0 {
		return nil
	}
	models := make([]opportunityModel, len(rows))
	for i, row := range rows {
		models[i] = rowToModel(row)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("insert opportunities: %w", err)
	}
	return nil
}

// PutStats replaces the platform figures row.
func (r *Repo) PutStats(ctx context.Context, s domopp.Stats) error {
	if r.db == nil {
		return domopp.ErrUnavailable
	}
	m := platformStatsModel{
		ID:             1,
		WinRate:        s.WinRate,
		AvgReturn:      s.AvgReturn,
		Subscribers:    s.Subscribers,
		MonthlyRevenue: s.MonthlyRevenue,
	}
	if err := r.db.WithContext(ctx).Save(&m).Error; err != nil {
		return fmt.Errorf("save platform stats: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (r *Repo) Ping(ctx context.Context) error {
	if r.db == nil {
		return domopp.ErrUnavailable
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("opportunity db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", domopp.ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repo) Close() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("opportunity db handle: %w", err)
	}
	return sqlDB.Close()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
