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
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func TestModelsMatchDescriptors(t *testing.T) {
	sqldb, _, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	cases := []struct {
		model interface{}
		table Table
	}{
		{(*User)(nil), Users},
		{(*Article)(nil), Articles},
	}
	for _, tc := range cases {
		t.Run(tc.table.Name, func(t *testing.T) {
			bt := db.Table(reflect.TypeOf(tc.model).Elem())
			assert.Equal(t, tc.table.PhysicalName(Namespace), bt.Name)
			require.Len(t, bt.Fields, len(tc.table.Columns))

			for _, col := range tc.table.Columns {
				f, ok := bt.FieldMap[col.Name]
				require.True(t, ok, "model has no field for column %s", col.Name)
				assert.Equal(t, col.PrimaryKey, f.IsPK, col.Name)
				assert.Equal(t, col.AutoIncrement, f.AutoIncrement, col.Name)
				if !col.PrimaryKey {
					assert.Equal(t, col.NotNull, f.NotNull, col.Name)
				}
				// required columns without a default must not fall back to a
				// Go zero value
				if col.NotNull && col.Default == "" && !col.PrimaryKey {
					if col.Type.Kind == KindNumeric {
						assert.Equal(t, reflect.TypeOf(decimal.NullDecimal{}), f.IndirectType, col.Name)
					} else {
						assert.True(t, f.NullZero, col.Name)
					}
				}
			}
		})
	}
}
