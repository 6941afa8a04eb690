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

// Users holds one record per program participant.
var Users = Table{
	Name: "users",
	Columns: []Column{
		{Name: "id", Type: Serial(), NotNull: true, PrimaryKey: true, AutoIncrement: true},
		{Name: "name", Type: Varchar(255), NotNull: true},
		{Name: "is_paying_member", Type: Boolean(), NotNull: true, Default: "false"},
		{Name: "program_start_date", Type: Date(), NotNull: true},
		{Name: "monthly_gambling_amount", Type: Numeric(10, 2), NotNull: true},
		{Name: "daily_play_hours", Type: Numeric(4, 2), NotNull: true},
		{Name: "money_saved", Type: Numeric(10, 2), NotNull: true, Default: "'0.00'"},
		{Name: "hours_saved", Type: Numeric(10, 2), NotNull: true, Default: "'0.00'"},
	},
	Indexes: []Index{
		{Name: "idx_is_paying_member", Columns: []string{"is_paying_member"}},
		{Name: "idx_program_start_date", Columns: []string{"program_start_date"}},
	},
}

// Articles holds the published content, some of it reserved to paying
// members.
var Articles = Table{
	Name: "articles",
	Columns: []Column{
		{Name: "id", Type: Serial(), NotNull: true, PrimaryKey: true, AutoIncrement: true},
		{Name: "title", Type: Varchar(255), NotNull: true},
		{Name: "content", Type: Text(), NotNull: true},
		{Name: "is_premium", Type: Boolean(), NotNull: true, Default: "false"},
	},
	Indexes: []Index{
		{Name: "idx_is_premium", Columns: []string{"is_premium"}},
		{Name: "idx_title", Columns: []string{"title"}},
	},
}

// Tables returns every table of the schema in creation order.
func Tables() []Table {
	return []Table{Users, Articles}
}

// Lookup finds a table by logical name.
func Lookup(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}
