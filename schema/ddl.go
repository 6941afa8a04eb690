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
	"fmt"
	"strings"
)

// QuoteIdent quotes an identifier for the dialect.
func QuoteIdent(d Dialect, s string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(s, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// SQL renders the column type for the dialect.
func (t ColumnType) SQL(d Dialect) string {
	switch t.Kind {
	case KindSerial:
		switch d {
		case MySQL:
			return "int"
		case SQLite:
			return "INTEGER"
		default:
			return "serial"
		}
	case KindVarchar:
		return fmt.Sprintf("varchar(%d)", t.Length)
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindNumeric:
		if d == MySQL {
			return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
		}
		return fmt.Sprintf("numeric(%d,%d)", t.Precision, t.Scale)
	default:
		return "text"
	}
}

// ColumnDefinition renders a column for CREATE TABLE or ADD COLUMN.
func ColumnDefinition(d Dialect, c Column) string {
	var b strings.Builder
	b.WriteString(QuoteIdent(d, c.Name))
	b.WriteByte(' ')
	b.WriteString(c.Type.SQL(d))
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	if c.PrimaryKey {
		switch {
		case d == SQLite && c.AutoIncrement:
			b.WriteString(" PRIMARY KEY AUTOINCREMENT")
		case d == MySQL && c.AutoIncrement:
			b.WriteString(" AUTO_INCREMENT PRIMARY KEY")
		default:
			b.WriteString(" PRIMARY KEY")
		}
	}
	return b.String()
}

// CreateTableSQL renders the CREATE TABLE statement of t without its
// indexes.
func CreateTableSQL(d Dialect, namespace string, t Table) string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		defs = append(defs, "\t"+ColumnDefinition(d, c))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)",
		QuoteIdent(d, t.PhysicalName(namespace)), strings.Join(defs, ",\n"))
}

// CreateIndexSQL renders one index of t.
func CreateIndexSQL(d Dialect, namespace string, t Table, idx Index) string {
	cols := make([]string, 0, len(idx.Columns))
	for _, c := range idx.Columns {
		cols = append(cols, QuoteIdent(d, c))
	}
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	ifNotExists := "IF NOT EXISTS "
	if d == MySQL {
		ifNotExists = ""
	}
	return fmt.Sprintf("CREATE %sINDEX %s%s ON %s (%s)",
		unique, ifNotExists, QuoteIdent(d, t.IndexName(namespace, idx)), QuoteIdent(d, t.PhysicalName(namespace)), strings.Join(cols, ", "))
}

func DropTableSQL(d Dialect, namespace string, t Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", QuoteIdent(d, t.PhysicalName(namespace)))
}

func DropIndexSQL(d Dialect, namespace string, t Table, idx Index) string {
	if d == MySQL {
		return fmt.Sprintf("DROP INDEX %s ON %s", QuoteIdent(d, t.IndexName(namespace, idx)), QuoteIdent(d, t.PhysicalName(namespace)))
	}
	return fmt.Sprintf("DROP INDEX IF EXISTS %s", QuoteIdent(d, t.IndexName(namespace, idx)))
}

// CreateSQL returns the statements creating t and its indexes.
func CreateSQL(d Dialect, namespace string, t Table) []string {
	stmts := []string{CreateTableSQL(d, namespace, t)}
	for _, idx := range t.Indexes {
		stmts = append(stmts, CreateIndexSQL(d, namespace, t, idx))
	}
	return stmts
}

// CreateAllSQL returns the statements creating the whole schema.
func CreateAllSQL(d Dialect, namespace string) []string {
	var stmts []string
	for _, t := range Tables() {
		stmts = append(stmts, CreateSQL(d, namespace, t)...)
	}
	return stmts
}
