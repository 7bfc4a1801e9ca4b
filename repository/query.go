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
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"github.com/tomoncle/accountowner/types"
)

// Query is a deferred select over T. Builder methods return a new Query and
// never touch the database; List, First, Exists, Count and Page run it.
type Query[T any] struct {
	session   *Session
	filters   []*types.QueryFilter
	orders    []string
	relations []string
	limit     int
	offset    int
	forUpdate bool
}

func newQuery[T any](session *Session) *Query[T] {
	return &Query[T]{session: session}
}

func (q *Query[T]) clone() *Query[T] {
	c := *q
	c.filters = append([]*types.QueryFilter(nil), q.filters...)
	c.orders = append([]string(nil), q.orders...)
	c.relations = append([]string(nil), q.relations...)
	return &c
}

// Where adds a predicate, e.g. Where("?TableAlias.owner_id = ?", id).
func (q *Query[T]) Where(query string, args ...any) *Query[T] {
	return q.Filter(types.NewQueryFilter(query, args...))
}

func (q *Query[T]) Filter(filter *types.QueryFilter) *Query[T] {
	c := q.clone()
	if filter != nil && filter.Schema != "" {
		c.filters = append(c.filters, filter)
	}
	return c
}

// Order appends ORDER BY terms such as "name ASC".
func (q *Query[T]) Order(orders ...string) *Query[T] {
	c := q.clone()
	c.orders = append(c.orders, orders...)
	return c
}

// Relation eagerly loads the named bun relation with the result.
func (q *Query[T]) Relation(name string) *Query[T] {
	c := q.clone()
	c.relations = append(c.relations, name)
	return c
}

func (q *Query[T]) Limit(n int) *Query[T] {
	c := q.clone()
	c.limit = n
	return c
}

func (q *Query[T]) Offset(n int) *Query[T] {
	c := q.clone()
	c.offset = n
	return c
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
// It is ignored on dialects without row locks.
func (q *Query[T]) ForUpdate() *Query[T] {
	c := q.clone()
	c.forUpdate = true
	return c
}

func (q *Query[T]) build(db bun.IDB, model any) *bun.SelectQuery {
	sq := db.NewSelect().Model(model)
	for _, f := range q.filters {
		sq = sq.Where(f.Schema, f.Args...)
	}
	for _, r := range q.relations {
		sq = sq.Relation(r)
	}
	if len(q.orders) > 0 {
		sq = sq.Order(q.orders...)
	}
	if q.limit > 0 {
		sq = sq.Limit(q.limit)
	}
	if q.offset > 0 {
		sq = sq.Offset(q.offset)
	}
	if q.forUpdate && q.session.SupportsRowLocking() {
		sq = sq.For("UPDATE")
	}
	return sq
}

// List returns every matching row; an empty result is an empty slice.
func (q *Query[T]) List(ctx context.Context) ([]*T, error) {
	db, err := q.session.idb()
	if err != nil {
		return nil, err
	}
	entities := make([]*T, 0)
	if err := q.build(db, &entities).Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return entities, nil
}

// First returns the first matching row, or nil when there is none.
func (q *Query[T]) First(ctx context.Context) (*T, error) {
	db, err := q.session.idb()
	if err != nil {
		return nil, err
	}
	entity := new(T)
	err = q.build(db, entity).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return entity, nil
}

func (q *Query[T]) Exists(ctx context.Context) (bool, error) {
	db, err := q.session.idb()
	if err != nil {
		return false, err
	}
	exists, err := q.build(db, (*T)(nil)).Exists(ctx)
	return exists, errors.WithStack(err)
}

func (q *Query[T]) Count(ctx context.Context) (int, error) {
	db, err := q.session.idb()
	if err != nil {
		return 0, err
	}
	n, err := q.build(db, (*T)(nil)).Count(ctx)
	return n, errors.WithStack(err)
}

// Page runs the query one page at a time. The request's filter narrows the
// query further and its orders, when given, replace the query's own.
func (q *Query[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	if pageRequest == nil {
		pageRequest = types.NewDefaultPageRequest(1, types.DefaultPageSize)
	}
	paged := q.Filter(pageRequest.GetFilter())
	if orders := pageRequest.GetOrders(); len(orders) > 0 {
		paged.orders = append([]string(nil), orders...)
	}
	paged.limit, paged.offset = 0, 0

	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := paged.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}

	items, err := paged.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		List(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = items
	return pagination, nil
}
