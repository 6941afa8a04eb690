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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tomoncle/ldj/config"
	"github.com/tomoncle/ldj/schema"
)

// newTestProvider returns a ready provider over a private in-memory SQLite
// database holding the whole schema.
func newTestProvider(t *testing.T, cfg *config.Config, opts ...Option) *Provider {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{Mode: config.ModeTest, Namespace: schema.Namespace}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = ":memory:"
	}
	p, err := NewProvider(cfg, append([]Option{WithLogger(NopLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	ctx := context.Background()
	for _, stmt := range schema.CreateAllSQL(schema.SQLite, cfg.Namespace) {
		_, err := p.DB().ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	return p
}
