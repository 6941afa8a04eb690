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

	"gopkg.in/yaml.v3"
)

// Namespace is the prefix carried by every physical table of the
// application, so that it can share a database with other tenants.
const Namespace = "ldj"

// TableName maps a logical table name to its physical name in namespace.
func TableName(namespace, logical string) string {
	if namespace == "" {
		return logical
	}
	return namespace + "_" + logical
}

// Kind enumerates the column types used by the schema.
type Kind int

const (
	KindSerial Kind = iota
	KindVarchar
	KindText
	KindBoolean
	KindDate
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "serial"
	case KindVarchar:
		return "varchar"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindSerial; k <= KindNumeric; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown column kind: %s", s)
}

func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseKind(value.Value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ColumnType is a dialect independent column type. Length applies to
// varchar, Precision and Scale to numeric.
type ColumnType struct {
	Kind      Kind `yaml:"kind"`
	Length    int  `yaml:"length,omitempty"`
	Precision int  `yaml:"precision,omitempty"`
	Scale     int  `yaml:"scale,omitempty"`
}

func Serial() ColumnType            { return ColumnType{Kind: KindSerial} }
func Varchar(length int) ColumnType { return ColumnType{Kind: KindVarchar, Length: length} }
func Text() ColumnType              { return ColumnType{Kind: KindText} }
func Boolean() ColumnType           { return ColumnType{Kind: KindBoolean} }
func Date() ColumnType              { return ColumnType{Kind: KindDate} }

func Numeric(precision, scale int) ColumnType {
	return ColumnType{Kind: KindNumeric, Precision: precision, Scale: scale}
}

// String renders the type in PostgreSQL spelling.
func (t ColumnType) String() string {
	return t.SQL(Postgres)
}

// Column describes one column. Default is a SQL literal, empty when the
// column has no default.
type Column struct {
	Name          string     `yaml:"name"`
	Type          ColumnType `yaml:"type"`
	NotNull       bool       `yaml:"not_null"`
	Default       string     `yaml:"default,omitempty"`
	PrimaryKey    bool       `yaml:"primary_key,omitempty"`
	AutoIncrement bool       `yaml:"auto_increment,omitempty"`
}

// Index is a secondary index. Indexes are read-optimization hints; none of
// the declared ones is unique.
type Index struct {
	Name    string   `yaml:"name"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique,omitempty"`
}

// Table is the canonical shape of one persisted entity. Name is the logical
// name, without namespace.
type Table struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
	Indexes []Index  `yaml:"indexes,omitempty"`
}

// PhysicalName is the name of the table in the database for namespace.
func (t Table) PhysicalName(namespace string) string {
	return TableName(namespace, t.Name)
}

// IndexName is the physical name of idx in namespace. Index names share one
// namespace per database schema, so they carry the physical table name.
func (t Table) IndexName(namespace string, idx Index) string {
	return t.PhysicalName(namespace) + "_" + idx.Name
}

// Column looks up a column by name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the primary key column names in declaration order.
func (t Table) PrimaryKey() []string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// Validate checks the descriptor for structural mistakes: duplicate or
// empty names, indexes on unknown columns and a missing primary key.
func (t Table) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %s: column name cannot be empty", t.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("table %s: duplicate column %s", t.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Type.Kind == KindVarchar && c.Type.Length <= 0 {
			return fmt.Errorf("table %s: varchar column %s needs a length", t.Name, c.Name)
		}
		if c.Type.Kind == KindNumeric && (c.Type.Precision <= 0 || c.Type.Scale < 0 || c.Type.Scale > c.Type.Precision) {
			return fmt.Errorf("table %s: invalid numeric(%d,%d) for column %s", t.Name, c.Type.Precision, c.Type.Scale, c.Name)
		}
	}
	if len(t.PrimaryKey()) == 0 {
		return fmt.Errorf("table %s: missing primary key", t.Name)
	}
	for _, idx := range t.Indexes {
		if idx.Name == "" || len(idx.Columns) == 0 {
			return fmt.Errorf("table %s: index needs a name and at least one column", t.Name)
		}
		for _, col := range idx.Columns {
			if _, ok := seen[col]; !ok {
				return fmt.Errorf("table %s: index %s references unknown column %s", t.Name, idx.Name, col)
			}
		}
	}
	return nil
}

// Dialect selects the SQL spelling of generated statements.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the usual aliases of the supported dialects.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", s)
	}
}
