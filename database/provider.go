/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/tomoncle/ldj/config"
	"github.com/tomoncle/ldj/schema"
)

// ErrNotReady is returned by operations on a provider that holds no client.
var ErrNotReady = errors.New("database provider is not ready")

// Provider owns the one shared client of a process. It is built once from a
// resolved configuration and handed to whatever needs database access.
type Provider struct {
	mu        sync.RWMutex
	cfg       config.Config
	state     State
	dialect   schema.Dialect
	db        *bun.DB
	sqlDB     *sql.DB
	logger    Logger
	metrics   *Metrics
	reg       prometheus.Registerer
	queryLog  io.Writer
	closeOnce sync.Once
	closeErr  error
}

// Option customises a Provider before it connects.
type Option func(*Provider)

// WithLogger sets the structured logger. The default is the DATABASE logrus
// logger.
func WithLogger(logger Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics registers query metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Provider) { p.reg = reg }
}

// WithQueryLogWriter redirects the query log enabled by DB_ENABLE_QUERY_LOG.
func WithQueryLogWriter(w io.Writer) Option {
	return func(p *Provider) { p.queryLog = w }
}

// NewProvider validates cfg and builds the client for cfg.DatabaseURL. No
// provider is returned when validation or driver setup fails.
func NewProvider(cfg *config.Config, opts ...Option) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrNotReady)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: connection string for mode %s", config.ErrMissingEnv, cfg.Mode)
	}

	p := &Provider{
		cfg:      *cfg,
		state:    StateUnconfigured,
		logger:   NewDefaultLogger(),
		queryLog: os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// MustNewProvider is like NewProvider but panics on error.
func MustNewProvider(cfg *config.Config, opts ...Option) *Provider {
	p, err := NewProvider(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Open resolves the configuration from env and builds a provider.
func Open(env config.Environment, opts ...Option) (*Provider, error) {
	cfg, err := config.Resolve(env)
	if err != nil {
		return nil, err
	}
	return NewProvider(cfg, opts...)
}

// MustOpen is like Open but panics on error. It is meant for process
// startup where a missing credential must abort.
func MustOpen(env config.Environment, opts ...Option) *Provider {
	p, err := Open(env, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Provider) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateReady {
		return nil
	}

	t, err := parseTarget(p.cfg.DatabaseURL, p.cfg.ConnectTimeout)
	if err != nil {
		return err
	}
	sqlDB, dialect, err := t.open()
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", t.dialect, err)
	}
	p.configurePool(sqlDB, t.inMemory())

	db := bun.NewDB(sqlDB, dialect)
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if p.cfg.EnableQueryLog {
		db.AddQueryHook(NewQueryLogHook(p.queryLog, true))
	}
	if p.cfg.SlowQueryTime > 0 {
		db.AddQueryHook(&slowQueryHook{threshold: p.cfg.SlowQueryTime, logger: p.logger})
	}
	if p.reg != nil {
		m, err := NewMetrics(p.reg)
		if err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		p.metrics = m
		db.AddQueryHook(&metricsHook{metrics: m})
	}
	db.RegisterModel(schema.Models()...)

	p.sqlDB = sqlDB
	p.db = db
	p.dialect = t.dialect
	p.state = StateReady

	p.logger.Info("database provider ready",
		"mode", p.cfg.Mode.String(),
		"dialect", string(t.dialect),
		"url", RedactURL(p.cfg.DatabaseURL),
		"namespace", p.cfg.Namespace,
	)
	return nil
}

func (p *Provider) configurePool(sqlDB *sql.DB, inMemory bool) {
	pool := p.cfg.Pool
	if inMemory {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}
	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}
}

// DB returns the bun client bound to the schema models.
func (p *Provider) DB() *bun.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db
}

// SQLDB returns the underlying pool.
func (p *Provider) SQLDB() *sql.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sqlDB
}

func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Provider) Dialect() schema.Dialect { return p.dialect }

func (p *Provider) Mode() config.Mode { return p.cfg.Mode }

// Config returns a copy of the configuration the provider was built from.
func (p *Provider) Config() config.Config { return p.cfg }

func (p *Provider) Metrics() *Metrics { return p.metrics }

// TableName returns the physical name of a logical table under the
// provider's namespace.
func (p *Provider) TableName(logical string) string {
	return schema.TableName(p.cfg.Namespace, logical)
}

// Ping verifies the store is reachable within the configured connect
// timeout.
func (p *Provider) Ping(ctx context.Context) error {
	db := p.DB()
	if db == nil {
		return ErrNotReady
	}
	if p.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ConnectTimeout)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// HealthCheck pings the store and reports pool usage.
func (p *Provider) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}

	sqlDB := p.SQLDB()
	if sqlDB == nil {
		status.LastError = ErrNotReady.Error()
		return status
	}

	err := p.Ping(ctx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
		p.logger.Warn("database health check failed", "error", err.Error())
	} else {
		status.Healthy = true
		status.Connected = true
	}

	stats := sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

// Stats returns the pool statistics, or nil when the provider is not ready.
func (p *Provider) Stats() *DBStats {
	sqlDB := p.SQLDB()
	if sqlDB == nil {
		return nil
	}
	return newDBStats(sqlDB.Stats())
}

// Close releases the pool. It is meant to run once at process exit; later
// calls return the first result.
func (p *Provider) Close() error {
	p.closeOnce.Do(func() {
		db := p.DB()
		if db == nil {
			return
		}
		p.closeErr = db.Close()
		if p.closeErr != nil {
			p.logger.Error("failed to close database connection", "error", p.closeErr.Error())
		} else {
			p.logger.Info("database connection closed")
		}
	})
	return p.closeErr
}
