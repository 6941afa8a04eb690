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

package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// User is the bun model of the users table. Decimal amounts are kept as
// decimal.Decimal so the fixed scale of the column survives the round trip.
// Required amounts without a default are NullDecimal: an unset one is sent
// as NULL, while an explicit zero is stored.
type User struct {
	bun.BaseModel `bun:"table:ldj_users,alias:u"`

	ID                    int32           `bun:"id,pk,autoincrement" json:"id"`
	Name                  string          `bun:"name,type:varchar(255),notnull,nullzero" json:"name"`
	IsPayingMember        bool            `bun:"is_paying_member,notnull" json:"isPayingMember"`
	ProgramStartDate      time.Time       `bun:"program_start_date,type:date,notnull,nullzero" json:"programStartDate"`
	MonthlyGamblingAmount decimal.NullDecimal `bun:"monthly_gambling_amount,type:numeric(10,2),notnull" json:"monthlyGamblingAmount"`
	DailyPlayHours        decimal.NullDecimal `bun:"daily_play_hours,type:numeric(4,2),notnull" json:"dailyPlayHours"`
	MoneySaved            decimal.Decimal `bun:"money_saved,type:numeric(10,2),notnull" json:"moneySaved"`
	HoursSaved            decimal.Decimal `bun:"hours_saved,type:numeric(10,2),notnull" json:"hoursSaved"`
}

// Article is the bun model of the articles table.
type Article struct {
	bun.BaseModel `bun:"table:ldj_articles,alias:a"`

	ID        int32  `bun:"id,pk,autoincrement" json:"id"`
	Title     string `bun:"title,type:varchar(255),notnull,nullzero" json:"title"`
	Content   string `bun:"content,type:text,notnull,nullzero" json:"content"`
	IsPremium bool   `bun:"is_premium,notnull" json:"isPremium"`
}

// Models returns one instance per model, for bun.DB.RegisterModel.
func Models() []interface{} {
	return []interface{}{(*User)(nil), (*Article)(nil)}
}
