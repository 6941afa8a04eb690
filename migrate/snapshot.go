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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tomoncle/ldj/schema"
)

const (
	metaDir      = "meta"
	snapshotFile = "snapshot.yaml"
)

// Snapshot records the schema state covered by the artifacts of one
// directory.
type Snapshot struct {
	Sequence  int            `yaml:"sequence"`
	Dialect   schema.Dialect `yaml:"dialect"`
	Namespace string         `yaml:"namespace"`
	Hash      string         `yaml:"hash"`
	Tables    []schema.Table `yaml:"tables"`
}

// SnapshotPath returns where the snapshot of dir is stored.
func SnapshotPath(dir string) string {
	return filepath.Join(dir, metaDir, snapshotFile)
}

// LoadSnapshot reads the snapshot of dir. A directory without one yields
// an empty snapshot.
func LoadSnapshot(dir string) (*Snapshot, error) {
	data, err := os.ReadFile(SnapshotPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", SnapshotPath(dir), err)
	}
	return &snap, nil
}

// SaveSnapshot writes snap under dir, creating directories as needed.
func SaveSnapshot(dir string, snap *Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	path := SnapshotPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
