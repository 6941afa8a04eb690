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

package repository

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/ldj/types"
)

type baseRepositoryImpl[T any] struct {
	db    *bun.DB
	table string
	alias string
}

// Option customises a repository.
type Option func(*options)

type options struct {
	table string
}

// WithTable binds the repository to a physical table other than the one
// declared on the model, e.g. the same table under another namespace.
func WithTable(physical string) Option {
	return func(o *options) { o.table = physical }
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB, opts ...Option) Repository[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	r := &baseRepositoryImpl[T]{db: db}
	t := db.Table(typeOf[T]())
	r.alias = t.Alias
	if o.table != "" && o.table != t.Name {
		r.table = o.table
	}
	return r
}

func (r *baseRepositoryImpl[T]) Table() string {
	if r.table != "" {
		return r.table
	}
	return r.db.Table(typeOf[T]()).Name
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery {
	return r.selectQuery(r.db, (*T)(nil))
}

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery {
	return r.insertQuery(r.db, (*T)(nil))
}

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery {
	return r.updateQuery(r.db, (*T)(nil))
}

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery {
	return r.deleteQuery(r.db, (*T)(nil))
}

func (r *baseRepositoryImpl[T]) selectQuery(db bun.IDB, model interface{}) *bun.SelectQuery {
	q := db.NewSelect().Model(model)
	if r.table != "" {
		q = q.ModelTableExpr("? AS ?", bun.Ident(r.table), bun.Ident(r.alias))
	}
	return q
}

func (r *baseRepositoryImpl[T]) insertQuery(db bun.IDB, model interface{}) *bun.InsertQuery {
	q := db.NewInsert().Model(model)
	if r.table != "" {
		q = q.ModelTableExpr("?", bun.Ident(r.table))
	}
	return q
}

func (r *baseRepositoryImpl[T]) updateQuery(db bun.IDB, model interface{}) *bun.UpdateQuery {
	q := db.NewUpdate().Model(model)
	if r.table != "" {
		q = q.ModelTableExpr("?", bun.Ident(r.table))
	}
	return q
}

// updateByPK selects entity by primary key. On a rebound table the
// condition is written without a table qualifier.
func (r *baseRepositoryImpl[T]) updateByPK(db bun.IDB, entity *T) *bun.UpdateQuery {
	q := r.updateQuery(db, entity)
	if r.table == "" {
		return q.WherePK()
	}
	for _, pk := range r.db.Table(typeOf[T]()).PKs {
		q = q.Where("? = ?", bun.Ident(pk.Name), pk.Value(reflect.ValueOf(entity).Elem()).Interface())
	}
	return q
}

func (r *baseRepositoryImpl[T]) deleteQuery(db bun.IDB, model interface{}) *bun.DeleteQuery {
	q := db.NewDelete().Model(model)
	if r.table != "" {
		q = q.ModelTableExpr("?", bun.Ident(r.table))
	}
	return q
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.selectQuery(r.db, &entity).Where("?.id = ?", bun.Ident(r.alias), id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.selectQuery(r.db, &entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	var entities []*T
	query := r.selectQuery(r.db, &entities)
	if !filter.IsEmpty() {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query := r.selectQuery(r.db, (*T)(nil))
	if !filter.IsEmpty() {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query.Count(ctx)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	var entities []*T
	query := r.selectQuery(r.db, &entities)
	if filter := pageRequest.GetFilter(); !filter.IsEmpty() {
		query = query.Where(filter.Schema, filter.Args...)
	}
	pagination := types.NewPagination[T](pageRequest)
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	orders := pageRequest.GetOrders()
	if len(orders) == 0 {
		orders = []string{r.alias + ".id ASC"}
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(orders...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.create(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) create(ctx context.Context, db bun.IDB, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	if len(entity) == 1 {
		_, err := r.insertQuery(db, entity[0]).Exec(ctx)
		return err
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := r.insertQuery(db, &entities).Exec(ctx)
	return err
}

// Upsert inserts entities and, on a primary key conflict, overwrites the
// given fields.
func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	query := r.insertQuery(r.db, &entities)

	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		var set []string
		for _, field := range fields {
			set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", bun.Ident(field), bun.Ident(field)))
		}
		_, err := query.On("CONFLICT (id) DO UPDATE").Set(strings.Join(set, ", ")).Exec(ctx)
		return err
	case r.db.HasFeature(feature.InsertOnDuplicateKey):
		var set []string
		for _, field := range fields {
			set = append(set, fmt.Sprintf("%s = VALUES(%s)", bun.Ident(field), bun.Ident(field)))
		}
		_, err := query.On("DUPLICATE KEY UPDATE " + strings.Join(set, ", ")).Exec(ctx)
		return err
	default:
		return fmt.Errorf("upsert is not supported by dialect %s", r.db.Dialect().Name())
	}
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.updateByPK(r.db, entity).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) UpdateColumns(ctx context.Context, entity *T, columns ...string) error {
	if len(columns) == 0 {
		return fmt.Errorf("columns cannot be empty")
	}
	_, err := r.updateByPK(r.db, entity).Column(columns...).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	_, err := r.deleteQuery(r.db, (*T)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.Tx, entity ...*T) error {
	return r.create(ctx, tx, entity...)
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx bun.Tx, entity *T) error {
	_, err := r.updateByPK(tx, entity).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error {
	_, err := r.deleteQuery(tx, (*T)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return r.db.RunInTx(ctx, nil, fn)
}
