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
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Metrics holds the query collectors of one provider.
type Metrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

// NewMetrics creates the query collectors and registers them with reg. A
// collector already registered under the same name is reused, so several
// providers can share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ldj",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Database query duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
			},
			[]string{"operation"},
		),
		QueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ldj",
				Subsystem: "db",
				Name:      "query_errors_total",
				Help:      "Database queries that returned an error, by operation and class",
			},
			[]string{"operation", "class"},
		),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.QueryDuration, err = register(reg, m.QueryDuration); err != nil {
		return nil, err
	}
	if m.QueryErrors, err = register(reg, m.QueryErrors); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

type metricsHook struct {
	metrics *Metrics
}

var _ bun.QueryHook = (*metricsHook)(nil)

func (h *metricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *metricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := strings.ToLower(event.Operation())
	h.metrics.QueryDuration.WithLabelValues(op).Observe(time.Since(event.StartTime).Seconds())
	if event.Err == nil || errors.Is(event.Err, sql.ErrNoRows) {
		return
	}
	_, class := ClassifyError(event.Err)
	h.metrics.QueryErrors.WithLabelValues(op, class.String()).Inc()
}
