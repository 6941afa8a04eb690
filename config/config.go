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

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomoncle/ldj/schema"
	"github.com/tomoncle/ldj/utils"
)

const (
	EnvDatabaseURL                    = "DATABASE_URL"
	EnvDevelopmentDatabaseURL         = "DEVELOPMENT_DATABASE_URL"
	EnvDatabaseURLExternal            = "DATABASE_URL_EXTERNAL"
	EnvDevelopmentDatabaseURLExternal = "DEVELOPMENT_DATABASE_URL_EXTERNAL"
	EnvMode                           = "APP_ENV"
	EnvModeFallback                   = "NODE_ENV"
	EnvNamespace                      = "DB_TABLE_NAMESPACE"
)

const (
	DefaultMigrationsDir  = "migrations"
	DefaultConnectTimeout = 10 * time.Second
)

// ErrMissingEnv is returned when a required connection variable is unset
// or empty.
var ErrMissingEnv = errors.New("required environment variable is not set")

// PoolConfig tunes the database/sql pool. Zero values keep the driver
// defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config is the resolved connection configuration for one process.
type Config struct {
	Mode      Mode
	Namespace string

	// DatabaseURL is the runtime connection string chosen for Mode.
	DatabaseURL string
	// MigrationURL is the externally reachable connection string used by
	// migration tooling. It may be empty; see RequireMigrationTarget.
	MigrationURL  string
	MigrationsDir string

	Pool           PoolConfig
	ConnectTimeout time.Duration
	EnableQueryLog bool
	SlowQueryTime  time.Duration

	migrationURLVar string
}

// ResolveMode reads the runtime-mode indicator, preferring APP_ENV over
// NODE_ENV.
func ResolveMode(env Environment) Mode {
	if v, ok := env.Lookup(EnvMode); ok && strings.TrimSpace(v) != "" {
		return ParseMode(v)
	}
	v, _ := env.Lookup(EnvModeFallback)
	return ParseMode(v)
}

// Resolve builds the configuration from env using the mode found in env.
func Resolve(env Environment) (*Config, error) {
	return ResolveWithMode(env, ResolveMode(env))
}

// ResolveWithMode builds the configuration for an explicit mode. Both
// runtime connection strings must be present whatever the mode is.
func ResolveWithMode(env Environment, mode Mode) (*Config, error) {
	primary := lookup(env, EnvDatabaseURL)
	development := lookup(env, EnvDevelopmentDatabaseURL)

	var missing []string
	if primary == "" {
		missing = append(missing, EnvDatabaseURL)
	}
	if development == "" {
		missing = append(missing, EnvDevelopmentDatabaseURL)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	cfg := &Config{
		Mode:           mode,
		Namespace:      schema.Namespace,
		DatabaseURL:    SelectURL(mode, primary, development),
		MigrationsDir:  MigrationsDir(DefaultMigrationsDir, mode),
		ConnectTimeout: DefaultConnectTimeout,
	}
	if mode.IsDevelopmentLike() {
		cfg.migrationURLVar = EnvDevelopmentDatabaseURLExternal
	} else {
		cfg.migrationURLVar = EnvDatabaseURLExternal
	}
	cfg.MigrationURL = lookup(env, cfg.migrationURLVar)

	if ns, ok := env.Lookup(EnvNamespace); ok {
		cfg.Namespace = strings.TrimSpace(ns)
	}
	cfg.Pool = PoolConfig{
		MaxOpenConns:    utils.ParseIntDefault(lookup(env, "DB_MAX_OPEN_CONNS"), 0),
		MaxIdleConns:    utils.ParseIntDefault(lookup(env, "DB_MAX_IDLE_CONNS"), 0),
		ConnMaxLifetime: utils.ParseDurationDefault(lookup(env, "DB_CONN_MAX_LIFETIME"), 0),
		ConnMaxIdleTime: utils.ParseDurationDefault(lookup(env, "DB_CONN_MAX_IDLE_TIME"), 0),
	}
	cfg.ConnectTimeout = utils.ParseDurationDefault(lookup(env, "DB_CONNECT_TIMEOUT"), DefaultConnectTimeout)
	cfg.EnableQueryLog = utils.ParseBoolDefault(lookup(env, "DB_ENABLE_QUERY_LOG"), false)
	cfg.SlowQueryTime = utils.ParseDurationDefault(lookup(env, "DB_SLOW_QUERY_TIME"), 0)
	return cfg, nil
}

// SelectURL returns development for development-like modes and primary
// otherwise.
func SelectURL(mode Mode, primary, development string) string {
	if mode.IsDevelopmentLike() {
		return development
	}
	return primary
}

// MigrationsDir returns the artifacts directory under root for mode.
func MigrationsDir(root string, mode Mode) string {
	if mode.IsDevelopmentLike() {
		return filepath.Join(root, "dev")
	}
	return root
}

// RequireMigrationTarget fails when the external connection string for
// the configured mode is absent.
func (c *Config) RequireMigrationTarget() error {
	if c.MigrationURL == "" {
		return fmt.Errorf("%w: %s", ErrMissingEnv, c.migrationURLVar)
	}
	return nil
}

func lookup(env Environment, key string) string {
	v, _ := env.Lookup(key)
	return strings.TrimSpace(v)
}
