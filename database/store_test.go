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
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/tomoncle/ldj/schema"
)

func newUser(name string) *schema.User {
	return &schema.User{
		Name:                  name,
		ProgramStartDate:      time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		MonthlyGamblingAmount: decimal.NewNullDecimal(decimal.RequireFromString("1234.56")),
		DailyPlayHours:        decimal.NewNullDecimal(decimal.RequireFromString("3.50")),
	}
}

func TestInsertUserWithoutRequiredFieldIsRejected(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()

	user := newUser("alice")
	user.ProgramStartDate = time.Time{}
	_, err := p.DB().NewInsert().Model(user).Exec(ctx)
	require.Error(t, err)
	ok, class := ClassifyError(err)
	assert.True(t, ok)
	assert.Equal(t, NotNullViolationErr, class)
	assert.True(t, IsConstraintViolation(err))

	user = newUser("")
	_, err = p.DB().NewInsert().Model(user).Exec(ctx)
	require.Error(t, err)
	_, class = ClassifyError(err)
	assert.Equal(t, NotNullViolationErr, class)

	count, err := p.DB().NewSelect().Model((*schema.User)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestInsertUserWithoutRequiredAmountIsRejected(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()

	for name, unset := range map[string]func(*schema.User){
		"monthly_gambling_amount": func(u *schema.User) { u.MonthlyGamblingAmount = decimal.NullDecimal{} },
		"daily_play_hours":        func(u *schema.User) { u.DailyPlayHours = decimal.NullDecimal{} },
	} {
		t.Run(name, func(t *testing.T) {
			user := newUser("frank")
			unset(user)
			_, err := p.DB().NewInsert().Model(user).Exec(ctx)
			require.Error(t, err)
			_, class := ClassifyError(err)
			assert.Equal(t, NotNullViolationErr, class)
		})
	}

	count, err := p.DB().NewSelect().Model((*schema.User)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	zero := newUser("grace")
	zero.MonthlyGamblingAmount = decimal.NewNullDecimal(decimal.Zero)
	zero.DailyPlayHours = decimal.NewNullDecimal(decimal.Zero)
	_, err = p.DB().NewInsert().Model(zero).Exec(ctx)
	require.NoError(t, err)

	got := new(schema.User)
	require.NoError(t, p.DB().NewSelect().Model(got).Where("id = ?", zero.ID).Scan(ctx))
	assert.True(t, got.MonthlyGamblingAmount.Valid)
	assert.Equal(t, "0.00", got.MonthlyGamblingAmount.Decimal.StringFixed(2))
	assert.Equal(t, "0.00", got.DailyPlayHours.Decimal.StringFixed(2))
}

func TestDecimalRoundTrip(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()

	user := newUser("bob")
	_, err := p.DB().NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	got := new(schema.User)
	err = p.DB().NewSelect().Model(got).Where("id = ?", user.ID).Scan(ctx)
	require.NoError(t, err)

	require.True(t, got.MonthlyGamblingAmount.Valid)
	assert.Equal(t, "1234.56", got.MonthlyGamblingAmount.Decimal.StringFixed(2))
	assert.True(t, got.MonthlyGamblingAmount.Decimal.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "3.50", got.DailyPlayHours.Decimal.StringFixed(2))
	assert.Equal(t, "0.00", got.MoneySaved.StringFixed(2))
	assert.False(t, got.IsPayingMember)
	y, m, d := got.ProgramStartDate.Date()
	assert.Equal(t, []int{2024, 1, 15}, []int{y, int(m), d})
}

func TestDefaultsApplyWhenColumnsOmitted(t *testing.T) {
	p := newTestProvider(t, nil)
	ctx := context.Background()

	_, err := p.DB().ExecContext(ctx,
		`INSERT INTO "ldj_articles" ("title", "content") VALUES ('Day one', 'Welcome')`)
	require.NoError(t, err)
	article := new(schema.Article)
	require.NoError(t, p.DB().NewSelect().Model(article).Where("title = ?", "Day one").Scan(ctx))
	assert.False(t, article.IsPremium)

	_, err = p.DB().ExecContext(ctx,
		`INSERT INTO "ldj_users" ("name", "program_start_date", "monthly_gambling_amount", "daily_play_hours")
		 VALUES ('carol', '2024-02-01', 200, 1.5)`)
	require.NoError(t, err)
	user := new(schema.User)
	require.NoError(t, p.DB().NewSelect().Model(user).Where("name = ?", "carol").Scan(ctx))
	assert.Equal(t, "0.00", user.MoneySaved.StringFixed(2))
	assert.Equal(t, "0.00", user.HoursSaved.StringFixed(2))
	assert.False(t, user.IsPayingMember)
}

func TestPostgresInsertStatement(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	mock.ExpectQuery(`(?i)INSERT INTO "ldj_articles"( AS "a")? \("id", "title", "content", "is_premium"\) VALUES \(DEFAULT, 'Hello', 'World', FALSE\) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	article := &schema.Article{Title: "Hello", Content: "World"}
	_, err = db.NewInsert().Model(article).Exec(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(42), article.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertSendsDefaultForOmittedRequiredColumn(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	// NULL reaches the NOT NULL column through DEFAULT, the store rejects it
	mock.ExpectQuery(`INSERT INTO "ldj_users".* VALUES \(DEFAULT, 'dave', (?i:false), DEFAULT, `).
		WillReturnError(assert.AnError)

	user := newUser("dave")
	user.ProgramStartDate = time.Time{}
	_, err = db.NewInsert().Model(user).Exec(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
