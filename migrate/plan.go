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

package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomoncle/ldj/schema"
)

// ErrUnsupportedChange is returned when a change cannot be expressed in the
// target dialect without rebuilding the table.
var ErrUnsupportedChange = errors.New("change not supported by dialect")

// ChangeKind identifies one step of a plan.
type ChangeKind int

const (
	CreateTable ChangeKind = iota
	AddColumn
	AlterColumn
	DropIndex
	CreateIndex
	DropColumn
	DropTable
)

func (k ChangeKind) String() string {
	switch k {
	case CreateTable:
		return "create_table"
	case AddColumn:
		return "add_column"
	case AlterColumn:
		return "alter_column"
	case CreateIndex:
		return "create_index"
	case DropIndex:
		return "drop_index"
	case DropColumn:
		return "drop_column"
	case DropTable:
		return "drop_table"
	default:
		return "unknown"
	}
}

// Change is one schema step with the statements applying and reverting it.
type Change struct {
	Kind  ChangeKind
	Table string
	Name  string
	Up    []string
	Down  []string
}

func (c Change) String() string {
	if c.Name == "" {
		return c.Kind.String() + " " + c.Table
	}
	return c.Kind.String() + " " + c.Table + "." + c.Name
}

// Plan is the ordered list of changes between two schema states.
type Plan struct {
	Dialect   schema.Dialect
	Namespace string
	Hash      string
	Changes   []Change
}

func (p *Plan) IsEmpty() bool { return len(p.Changes) == 0 }

// Up returns the forward statements in order.
func (p *Plan) Up() []string {
	var stmts []string
	for _, c := range p.Changes {
		stmts = append(stmts, c.Up...)
	}
	return stmts
}

// Down returns the reverting statements, last change first.
func (p *Plan) Down() []string {
	var stmts []string
	for i := len(p.Changes) - 1; i >= 0; i-- {
		stmts = append(stmts, p.Changes[i].Down...)
	}
	return stmts
}

// Hash returns the sha256 signature of a schema state. Column and index
// order within a table do not matter; table order does not matter.
func Hash(d schema.Dialect, namespace string, tables []schema.Table) string {
	var parts []string
	for _, t := range tables {
		parts = append(parts, tableSignature(d, namespace, t))
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(string(d) + "|" + strings.Join(parts, "\n")))
	return hex.EncodeToString(sum[:])
}

func tableSignature(d schema.Dialect, namespace string, t schema.Table) string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		cols = append(cols, columnSignature(d, c))
	}
	sort.Strings(cols)
	idx := make([]string, 0, len(t.Indexes))
	for _, i := range t.Indexes {
		idx = append(idx, indexSignature(i))
	}
	sort.Strings(idx)
	return t.PhysicalName(namespace) + "|cols:" + strings.Join(cols, ",") + "|idx:" + strings.Join(idx, ";")
}

func columnSignature(d schema.Dialect, c schema.Column) string {
	return fmt.Sprintf("%s:%s:%t:%s:%t:%t", c.Name, c.Type.SQL(d), c.NotNull, normalizeDefault(c.Default), c.PrimaryKey, c.AutoIncrement)
}

func indexSignature(i schema.Index) string {
	cols := make([]string, len(i.Columns))
	for n, c := range i.Columns {
		cols[n] = strings.ToLower(strings.TrimSpace(c))
	}
	return fmt.Sprintf("%s|%t|%s", i.Name, i.Unique, strings.Join(cols, ","))
}

// Diff plans the changes turning from into to. Tables are matched by
// physical name, so a namespace change drops and recreates every table.
// Changes are ordered by kind, then table, then name. Index drops precede
// index creations so an index redefined under the same name is replaced.
func Diff(d schema.Dialect, fromNamespace string, from []schema.Table, toNamespace string, to []schema.Table) (*Plan, error) {
	p := &Plan{Dialect: d, Namespace: toNamespace, Hash: Hash(d, toNamespace, to)}

	existing := make(map[string]schema.Table, len(from))
	for _, t := range from {
		existing[t.PhysicalName(fromNamespace)] = t
	}
	desired := make(map[string]schema.Table, len(to))
	for _, t := range to {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		desired[t.PhysicalName(toNamespace)] = t
	}

	for name, t := range desired {
		old, ok := existing[name]
		if !ok {
			p.Changes = append(p.Changes, createTable(d, toNamespace, t)...)
			continue
		}
		changes, err := diffTable(d, toNamespace, old, t)
		if err != nil {
			return nil, err
		}
		p.Changes = append(p.Changes, changes...)
	}
	for name, t := range existing {
		if _, ok := desired[name]; !ok {
			p.Changes = append(p.Changes, dropTable(d, fromNamespace, t)...)
		}
	}

	sort.SliceStable(p.Changes, func(i, j int) bool {
		a, b := p.Changes[i], p.Changes[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Table != b.Table {
			return a.Table < b.Table
		}
		return a.Name < b.Name
	})
	return p, nil
}

func createTable(d schema.Dialect, namespace string, t schema.Table) []Change {
	physical := t.PhysicalName(namespace)
	changes := []Change{{
		Kind:  CreateTable,
		Table: physical,
		Up:    []string{schema.CreateTableSQL(d, namespace, t)},
		Down:  []string{schema.DropTableSQL(d, namespace, t)},
	}}
	for _, idx := range t.Indexes {
		changes = append(changes, Change{
			Kind:  CreateIndex,
			Table: physical,
			Name:  idx.Name,
			Up:    []string{schema.CreateIndexSQL(d, namespace, t, idx)},
			Down:  []string{schema.DropIndexSQL(d, namespace, t, idx)},
		})
	}
	return changes
}

// dropTable reverts by recreating the table with its indexes in Down.
func dropTable(d schema.Dialect, namespace string, t schema.Table) []Change {
	down := schema.CreateSQL(d, namespace, t)
	return []Change{{
		Kind:  DropTable,
		Table: t.PhysicalName(namespace),
		Up:    []string{schema.DropTableSQL(d, namespace, t)},
		Down:  down,
	}}
}

func diffTable(d schema.Dialect, namespace string, from, to schema.Table) ([]Change, error) {
	var changes []Change
	physical := to.PhysicalName(namespace)
	table := schema.QuoteIdent(d, physical)

	for _, c := range to.Columns {
		old, ok := from.Column(c.Name)
		if !ok {
			changes = append(changes, Change{
				Kind:  AddColumn,
				Table: physical,
				Name:  c.Name,
				Up:    []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, schema.ColumnDefinition(d, c))},
				Down:  []string{dropColumnSQL(d, table, c.Name)},
			})
			continue
		}
		if !needsModification(d, c, old) {
			continue
		}
		up, err := modifyColumnSQL(d, table, old, c)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", physical, c.Name, err)
		}
		down, err := modifyColumnSQL(d, table, c, old)
		if err != nil {
			return nil, fmt.Errorf("table %s column %s: %w", physical, c.Name, err)
		}
		changes = append(changes, Change{Kind: AlterColumn, Table: physical, Name: c.Name, Up: up, Down: down})
	}
	for _, c := range from.Columns {
		if _, ok := to.Column(c.Name); ok {
			continue
		}
		changes = append(changes, Change{
			Kind:  DropColumn,
			Table: physical,
			Name:  c.Name,
			Up:    []string{dropColumnSQL(d, table, c.Name)},
			Down:  []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, schema.ColumnDefinition(d, c))},
		})
	}

	oldIdx := indexesBySignature(from.Indexes)
	newIdx := indexesBySignature(to.Indexes)
	for sig, idx := range newIdx {
		if _, ok := oldIdx[sig]; ok {
			continue
		}
		changes = append(changes, Change{
			Kind:  CreateIndex,
			Table: physical,
			Name:  idx.Name,
			Up:    []string{schema.CreateIndexSQL(d, namespace, to, idx)},
			Down:  []string{schema.DropIndexSQL(d, namespace, to, idx)},
		})
	}
	for sig, idx := range oldIdx {
		if _, ok := newIdx[sig]; ok {
			continue
		}
		changes = append(changes, Change{
			Kind:  DropIndex,
			Table: physical,
			Name:  idx.Name,
			Up:    []string{schema.DropIndexSQL(d, namespace, from, idx)},
			Down:  []string{schema.CreateIndexSQL(d, namespace, from, idx)},
		})
	}
	return changes, nil
}

func indexesBySignature(indexes []schema.Index) map[string]schema.Index {
	m := make(map[string]schema.Index, len(indexes))
	for _, idx := range indexes {
		m[indexSignature(idx)] = idx
	}
	return m
}

func dropColumnSQL(d schema.Dialect, table, column string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", table, schema.QuoteIdent(d, column))
}

// modifyColumnSQL returns the statements turning column from into to.
func modifyColumnSQL(d schema.Dialect, table string, from, to schema.Column) ([]string, error) {
	col := schema.QuoteIdent(d, to.Name)
	switch d {
	case schema.Postgres:
		var stmts []string
		if from.Type.SQL(d) != to.Type.SQL(d) {
			typ := to.Type.SQL(d)
			if to.Type.Kind == schema.KindSerial {
				typ = "integer"
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s", table, col, typ, col, typ))
		}
		if from.NotNull != to.NotNull {
			if to.NotNull {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", table, col))
			} else {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", table, col))
			}
		}
		if normalizeDefault(from.Default) != normalizeDefault(to.Default) {
			if to.Default != "" {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", table, col, to.Default))
			} else {
				stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", table, col))
			}
		}
		if from.AutoIncrement != to.AutoIncrement || from.PrimaryKey != to.PrimaryKey {
			return nil, fmt.Errorf("%w: %s cannot change identity or primary key in place", ErrUnsupportedChange, d)
		}
		return stmts, nil
	case schema.MySQL:
		if from.PrimaryKey != to.PrimaryKey {
			return nil, fmt.Errorf("%w: %s cannot change primary key in place", ErrUnsupportedChange, d)
		}
		nullStr := " NULL"
		if to.NotNull {
			nullStr = " NOT NULL"
		}
		def := ""
		if to.Default != "" {
			def = " DEFAULT " + to.Default
		}
		auto := ""
		if to.AutoIncrement {
			auto = " AUTO_INCREMENT"
			nullStr = " NOT NULL"
		}
		return []string{fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s%s%s%s", table, col, to.Type.SQL(d), nullStr, def, auto)}, nil
	default:
		return nil, fmt.Errorf("%w: %s cannot alter column %s", ErrUnsupportedChange, d, to.Name)
	}
}

func needsModification(d schema.Dialect, desired, existing schema.Column) bool {
	return columnSignature(d, desired) != columnSignature(d, existing)
}

func normalizeDefault(def string) string {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(def), "()"))
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}
