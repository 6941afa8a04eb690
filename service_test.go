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

package ldj

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/ldj/config"
	"github.com/tomoncle/ldj/database"
	"github.com/tomoncle/ldj/schema"
	"github.com/tomoncle/ldj/types"
)

func newProvider(t *testing.T, namespace string) *database.Provider {
	t.Helper()
	env := config.MapEnv{
		config.EnvDatabaseURL:            "postgres://app@localhost/ldj",
		config.EnvDevelopmentDatabaseURL: ":memory:",
		config.EnvMode:                   "test",
		config.EnvNamespace:              namespace,
	}
	p, err := database.Open(env, database.WithLogger(database.NopLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	for _, stmt := range schema.CreateAllSQL(p.Dialect(), p.Config().Namespace) {
		_, err := p.DB().ExecContext(context.Background(), stmt)
		require.NoError(t, err)
	}
	return p
}

func TestUsersService(t *testing.T) {
	p := newProvider(t, schema.Namespace)
	users := Users(p)
	ctx := context.Background()

	u := &schema.User{
		Name:                  "frank",
		IsPayingMember:        true,
		ProgramStartDate:      time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC),
		MonthlyGamblingAmount: decimal.NewNullDecimal(decimal.RequireFromString("1234.56")),
		DailyPlayHours:        decimal.NewNullDecimal(decimal.RequireFromString("4.00")),
	}
	require.NoError(t, users.Save(ctx, u))

	got, err := users.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", got.MonthlyGamblingAmount.Decimal.StringFixed(2))
	assert.True(t, got.IsPayingMember)

	got.HoursSaved = decimal.RequireFromString("10.5")
	require.NoError(t, users.UpdateColumns(ctx, got, "hours_saved"))

	paying, err := users.List(ctx, types.NewQueryFilter("is_paying_member = ?", true))
	require.NoError(t, err)
	require.Len(t, paying, 1)
	assert.Equal(t, "10.50", paying[0].HoursSaved.StringFixed(2))
}

func TestArticlesServiceWithNamespace(t *testing.T) {
	p := newProvider(t, "tenant")
	articles := Articles(p)
	ctx := context.Background()

	err := articles.Transaction(ctx, func(ctx context.Context, tx bun.Tx) error {
		return articles.SaveWithTx(ctx, tx,
			&schema.Article{Title: "free", Content: "body"},
			&schema.Article{Title: "paid", Content: "body", IsPremium: true},
		)
	})
	require.NoError(t, err)

	n, err := articles.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := articles.Page(ctx, types.NewPageRequest(1, 1, types.NewQueryFilter("is_premium = ?", true)))
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "paid", page.Items[0].Title)

	var raw int
	require.NoError(t, p.DB().NewRaw(`SELECT count(*) FROM "tenant_articles"`).Scan(ctx, &raw))
	assert.Equal(t, 2, raw)

	exists, err := articles.SelectBuilder().Where("title = ?", "free").Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSaveRejectsMissingRequiredField(t *testing.T) {
	p := newProvider(t, schema.Namespace)
	err := Articles(p).Save(context.Background(), &schema.Article{Title: "no content"})
	require.Error(t, err)
	assert.True(t, database.IsConstraintViolation(err))
}
