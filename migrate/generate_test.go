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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/ldj/schema"
)

func TestGenerateWritesInitialMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migrations", "dev")

	res, err := Generate(dir, schema.Postgres, schema.Namespace, "")
	require.NoError(t, err)
	require.True(t, res.Written())
	assert.Equal(t, filepath.Join(dir, "0001_init.sql"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "-- dialect: postgres\n")
	assert.Contains(t, content, "-- hash: "+res.Plan.Hash+"\n")
	up := content[strings.Index(content, upMarker):strings.Index(content, downMarker)]
	assert.Contains(t, up, `CREATE TABLE IF NOT EXISTS "ldj_users" (`)
	assert.Contains(t, up, `"monthly_gambling_amount" numeric(10,2) NOT NULL,`)
	assert.Contains(t, up, `CREATE INDEX IF NOT EXISTS "ldj_articles_idx_title" ON "ldj_articles" ("title");`)
	down := content[strings.Index(content, downMarker):]
	assert.Contains(t, down, `DROP TABLE IF EXISTS "ldj_users";`)

	snap, err := LoadSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Sequence)
	assert.Equal(t, schema.Postgres, snap.Dialect)
	assert.Equal(t, schema.Namespace, snap.Namespace)
	assert.Equal(t, res.Plan.Hash, snap.Hash)
	assert.Equal(t, schema.Tables(), snap.Tables)
}

func TestGenerateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(dir, schema.SQLite, schema.Namespace, "init")
	require.NoError(t, err)

	res, err := Generate(dir, schema.SQLite, schema.Namespace, "again")
	require.NoError(t, err)
	assert.False(t, res.Written())
	assert.True(t, res.Plan.IsEmpty())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var scripts []string
	for _, e := range entries {
		if !e.IsDir() {
			scripts = append(scripts, e.Name())
		}
	}
	assert.Equal(t, []string{"0001_init.sql"}, scripts)
}

func TestGenerateNextSequence(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(dir, schema.MySQL, schema.Namespace, "")
	require.NoError(t, err)

	users := cloneTable(schema.Users)
	users.Columns = append(users.Columns, schema.Column{Name: "streak_days", Type: schema.Numeric(6, 0), NotNull: true, Default: "0"})
	g := NewGenerator(dir, schema.MySQL, schema.Namespace)
	g.Tables = []schema.Table{users, schema.Articles}

	res, err := g.Generate("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "0002_add_column_ldj_users_streak_days.sql"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ALTER TABLE `ldj_users` ADD COLUMN `streak_days` decimal(6,0) NOT NULL DEFAULT 0;")
	assert.Contains(t, string(data), "ALTER TABLE `ldj_users` DROP COLUMN `streak_days`;")

	snap, err := LoadSnapshot(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Sequence)
	_, ok := snap.Tables[0].Column("streak_days")
	assert.True(t, ok)
}

func TestGenerateRejectsDialectSwitch(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(dir, schema.Postgres, schema.Namespace, "")
	require.NoError(t, err)
	_, err = Generate(dir, schema.MySQL, schema.Namespace, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target postgres")
}

func TestLoadSnapshotMissing(t *testing.T) {
	snap, err := LoadSnapshot(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, snap.Sequence)
	assert.Empty(t, snap.Tables)
}

func TestLoadSnapshotCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, metaDir), 0755))
	require.NoError(t, os.WriteFile(SnapshotPath(dir), []byte("tables: [\n"), 0644))
	_, err := LoadSnapshot(dir)
	assert.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_email_to_users", sanitizeName("Add email to users!"))
	assert.Equal(t, "schema_change", sanitizeName("***"))
}
