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
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/ldj/schema"
	"github.com/tomoncle/ldj/utils"
)

const (
	upMarker   = "-- +up"
	downMarker = "-- +down"
)

var logger = utils.NewLogger("MIGRATE")

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

// Result describes one generator run.
type Result struct {
	Plan *Plan
	// Path is the artifact written, empty when the schema was unchanged.
	Path string
}

func (r *Result) Written() bool { return r.Path != "" }

// Generator writes migration artifacts for the schema descriptors into
// one directory. It never connects to a database.
type Generator struct {
	Dir       string
	Dialect   schema.Dialect
	Namespace string
	Tables    []schema.Table
}

// NewGenerator returns a generator over every table of the schema.
func NewGenerator(dir string, d schema.Dialect, namespace string) *Generator {
	return &Generator{Dir: dir, Dialect: d, Namespace: namespace, Tables: schema.Tables()}
}

// Generate diffs the schema against the snapshot of dir and writes the
// next NNNN_<name>.sql artifact. Nothing is written when the schema is
// unchanged.
func Generate(dir string, d schema.Dialect, namespace, name string) (*Result, error) {
	return NewGenerator(dir, d, namespace).Generate(name)
}

// Plan computes the pending changes without writing anything.
func (g *Generator) Plan() (*Plan, *Snapshot, error) {
	snap, err := LoadSnapshot(g.Dir)
	if err != nil {
		return nil, nil, err
	}
	if snap.Dialect != "" && snap.Dialect != g.Dialect {
		return nil, nil, fmt.Errorf("artifacts in %s target %s, not %s", g.Dir, snap.Dialect, g.Dialect)
	}
	fromNamespace := snap.Namespace
	if len(snap.Tables) == 0 {
		fromNamespace = g.Namespace
	}
	plan, err := Diff(g.Dialect, fromNamespace, snap.Tables, g.Namespace, g.Tables)
	if err != nil {
		return nil, nil, err
	}
	return plan, snap, nil
}

func (g *Generator) Generate(name string) (*Result, error) {
	plan, snap, err := g.Plan()
	if err != nil {
		return nil, err
	}
	if plan.IsEmpty() {
		logger.WithField("dir", g.Dir).Info("schema unchanged, no migration written")
		return &Result{Plan: plan}, nil
	}

	seq := snap.Sequence + 1
	if name == "" {
		name = defaultName(snap, plan)
	}
	path := filepath.Join(g.Dir, fmt.Sprintf("%04d_%s.sql", seq, sanitizeName(name)))
	if err := os.MkdirAll(g.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("migration %s already exists", path)
	}
	if err := os.WriteFile(path, Render(plan), 0644); err != nil {
		return nil, fmt.Errorf("failed to write migration: %w", err)
	}

	next := &Snapshot{
		Sequence:  seq,
		Dialect:   g.Dialect,
		Namespace: g.Namespace,
		Hash:      plan.Hash,
		Tables:    g.Tables,
	}
	if err := SaveSnapshot(g.Dir, next); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"path":    path,
		"changes": len(plan.Changes),
		"hash":    plan.Hash[:12],
	}).Info("migration written")
	return &Result{Plan: plan, Path: path}, nil
}

// Render formats a plan as a migration script with up and down sections.
func Render(p *Plan) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "-- dialect: %s\n", p.Dialect)
	fmt.Fprintf(&b, "-- namespace: %s\n", p.Namespace)
	fmt.Fprintf(&b, "-- hash: %s\n", p.Hash)
	for _, c := range p.Changes {
		fmt.Fprintf(&b, "-- %s\n", c)
	}
	b.WriteString("\n" + upMarker + "\n")
	writeStatements(&b, p.Up())
	b.WriteString("\n" + downMarker + "\n")
	writeStatements(&b, p.Down())
	return b.Bytes()
}

func writeStatements(b *bytes.Buffer, stmts []string) {
	for _, s := range stmts {
		b.WriteString(strings.TrimRight(s, "; \n"))
		b.WriteString(";\n")
	}
}

func defaultName(snap *Snapshot, p *Plan) string {
	if len(snap.Tables) == 0 {
		return "init"
	}
	if len(p.Changes) == 1 {
		c := p.Changes[0]
		return strings.Join([]string{c.Kind.String(), c.Table, c.Name}, "_")
	}
	return "schema_change"
}

func sanitizeName(name string) string {
	s := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if s == "" {
		return "schema_change"
	}
	return s
}
