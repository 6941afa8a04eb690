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
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		ok    bool
		class SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", fmt.Errorf("get user: %w", sql.ErrNoRows), true, NoRowsErr},
		{"pq not null", &pq.Error{Code: "23502"}, true, NotNullViolationErr},
		{"pq duplicate", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true, DuplicateKeyErr},
		{"pq overflow", &pq.Error{Code: "22003"}, true, NumericOverflowErr},
		{"pq other", &pq.Error{Code: "XX000"}, true, UnknownErr},
		{"mysql not null", &mysql.MySQLError{Number: 1048}, true, NotNullViolationErr},
		{"mysql truncated", &mysql.MySQLError{Number: 1406}, true, DataTruncatedErr},
		{"sqlite not null", errors.New("constraint failed: NOT NULL constraint failed: ldj_users.program_start_date (1299)"), true, NotNullViolationErr},
		{"sqlite unique", errors.New("UNIQUE constraint failed: ldj_users.id"), true, DuplicateKeyErr},
		{"sqlite table", errors.New("SQL logic error: no such table: ldj_missing (1)"), true, NoTableErr},
		{"closed", sql.ErrConnDone, false, UnknownErr},
		{"closed db", errors.New("sql: database is closed"), true, ConnectionErr},
		{"other", errors.New("boom"), false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, class := ClassifyError(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.class, class)
		})
	}
}

func TestIsConstraintViolation(t *testing.T) {
	assert.True(t, IsConstraintViolation(&pq.Error{Code: "23502"}))
	assert.True(t, IsConstraintViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsConstraintViolation(sql.ErrNoRows))
	assert.False(t, IsConstraintViolation(&pq.Error{Code: "42P01"}))
	assert.False(t, IsConstraintViolation(nil))
}

func TestSQLErrorString(t *testing.T) {
	assert.Equal(t, "not_null_violation", NotNullViolationErr.String())
	assert.Equal(t, "unknown", SQLError(99).String())
}
