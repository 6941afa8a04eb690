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
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// SQLError classifies a store error. Classification never replaces the
// original error: callers keep returning err and use the class to decide.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoTableErr
	NoColumnErr
	DuplicateKeyErr
	NotNullViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	NumericOverflowErr
	InvalidTypeCastErr
	ConnectionErr
)

func (e SQLError) String() string {
	switch e {
	case NoRowsErr:
		return "no_rows"
	case NoTableErr:
		return "no_table"
	case NoColumnErr:
		return "no_column"
	case DuplicateKeyErr:
		return "duplicate_key"
	case NotNullViolationErr:
		return "not_null_violation"
	case CheckConstraintViolationErr:
		return "check_violation"
	case DataTruncatedErr:
		return "data_truncated"
	case NumericOverflowErr:
		return "numeric_overflow"
	case InvalidTypeCastErr:
		return "invalid_type_cast"
	case ConnectionErr:
		return "connection"
	default:
		return "unknown"
	}
}

var pqCodes = map[pq.ErrorCode]SQLError{
	"42P01": NoTableErr,
	"42703": NoColumnErr,
	"23505": DuplicateKeyErr,
	"23502": NotNullViolationErr,
	"23514": CheckConstraintViolationErr,
	"22001": DataTruncatedErr,
	"22003": NumericOverflowErr,
	"22P02": InvalidTypeCastErr,
	"42804": InvalidTypeCastErr,
	"08000": ConnectionErr,
	"08003": ConnectionErr,
	"08006": ConnectionErr,
}

var mysqlCodes = map[uint16]SQLError{
	1146: NoTableErr,
	1054: NoColumnErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1364: NotNullViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
	1264: NumericOverflowErr,
	1366: InvalidTypeCastErr,
}

// ClassifyError maps driver errors of PostgreSQL, MySQL and SQLite to an
// SQLError. The boolean is false when err is nil or not recognised.
func ClassifyError(err error) (bool, SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if class, ok := pqCodes[pqErr.Code]; ok {
			return true, class
		}
		return true, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if class, ok := mysqlCodes[mysqlErr.Number]; ok {
			return true, class
		}
		return true, UnknownErr
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "sqlstate 23502"):
		return true, NotNullViolationErr
	case strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "sqlstate 23505"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "check constraint"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "no such table"),
		strings.Contains(s, "undefined table"):
		return true, NoTableErr
	case strings.Contains(s, "no such column"),
		strings.Contains(s, "undefined column"):
		return true, NoColumnErr
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "bad connection"),
		strings.Contains(s, "sql: database is closed"):
		return true, ConnectionErr
	}
	return false, UnknownErr
}

// IsConstraintViolation reports whether err was raised by a column or
// table constraint of the store.
func IsConstraintViolation(err error) bool {
	ok, class := ClassifyError(err)
	if !ok {
		return false
	}
	switch class {
	case NotNullViolationErr, DuplicateKeyErr, CheckConstraintViolationErr, DataTruncatedErr, NumericOverflowErr:
		return true
	}
	return false
}
