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

package ldj

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tomoncle/ldj/database"
	"github.com/tomoncle/ldj/repository"
	"github.com/tomoncle/ldj/schema"
	"github.com/tomoncle/ldj/types"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Count returns the number of entities matching filter.
	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Update writes every column of an existing entity.
	Update(ctx context.Context, model *T) error

	// UpdateColumns writes the named columns of an existing entity.
	UpdateColumns(ctx context.Context, model *T, columns ...string) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate inserts entities, overwriting fields on a primary key
	// conflict.
	SaveOrUpdate(ctx context.Context, fields []string, model ...*T) error

	// SaveWithTx inserts entities within an existing transaction.
	SaveWithTx(ctx context.Context, tx bun.Tx, model ...*T) error

	// UpdateWithTx updates an entity within a transaction.
	UpdateWithTx(ctx context.Context, tx bun.Tx, model *T) error

	// DeleteWithTx removes an entity within a transaction.
	DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error

	// Transaction runs fn in a transaction committed when fn returns nil.
	Transaction(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error

	SelectBuilder() *bun.SelectQuery
	InsertBuilder() *bun.InsertQuery
	UpdateBuilder() *bun.UpdateQuery
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
}

// NewService returns a Service over the provider's client. table is the
// logical table name; it is mapped to the provider's namespace.
func NewService[T any](p *database.Provider, table string) Service[T] {
	return &baseServiceImpl[T]{
		repo: repository.NewRepository[T](p.DB(), repository.WithTable(p.TableName(table))),
	}
}

// Users returns the service of the users table.
func Users(p *database.Provider) Service[schema.User] {
	return NewService[schema.User](p, schema.Users.Name)
}

// Articles returns the service of the articles table.
func Articles(p *database.Provider) Service[schema.Article] {
	return NewService[schema.Article](p, schema.Articles.Name)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.repo.Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, model ...*T) error {
	return s.repo.Upsert(ctx, fields, model...)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.repo.GetOne(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.repo.GetAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.repo.List(ctx, filter)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T) error {
	return s.repo.Update(ctx, model)
}

func (s *baseServiceImpl[T]) UpdateColumns(ctx context.Context, model *T, columns ...string) error {
	return s.repo.UpdateColumns(ctx, model, columns...)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.repo.Delete(ctx, id)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.repo.Page(ctx, page)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx bun.Tx, model ...*T) error {
	return s.repo.CreateWithTx(ctx, tx, model...)
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx bun.Tx, model *T) error {
	return s.repo.UpdateWithTx(ctx, tx, model)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx bun.Tx, id any) error {
	return s.repo.DeleteWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) Transaction(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return s.repo.RunInTx(ctx, fn)
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.repo.NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.repo.NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.repo.NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.repo.NewDelete()
}
