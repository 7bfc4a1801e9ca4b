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

package types

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// QueryFilter is a WHERE fragment with its bind arguments, for example
// NewQueryFilter("?TableAlias.owner_id = ?", id).
type QueryFilter struct {
	Schema string
	Args   []any
}

func NewQueryFilter(schema string, args ...any) *QueryFilter {
	return &QueryFilter{Schema: schema, Args: args}
}

// PageRequest selects one page of a listing. Pages start at 1. Out of range
// page numbers and sizes are clamped, never rejected.
type PageRequest struct {
	page     int
	pageSize int
	filter   *QueryFilter
	orders   []string // "name ASC", "date_created DESC"
}

// NewPageRequest builds a request with an optional filter. Orders, when
// given, replace the ordering of the listing being paged.
func NewPageRequest(page, pageSize int, filter *QueryFilter, orders ...string) *PageRequest {
	return &PageRequest{
		page:     max(page, 1),
		pageSize: clampPageSize(pageSize),
		filter:   filter,
		orders:   orders,
	}
}

func NewDefaultPageRequest(page, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil)
}

func clampPageSize(n int) int {
	switch {
	case n < 1:
		return DefaultPageSize
	case n > MaxPageSize:
		return MaxPageSize
	}
	return n
}

func (p *PageRequest) GetPage() int { return p.page }

func (p *PageRequest) GetPageSize() int { return p.pageSize }

func (p *PageRequest) GetOffset() int {
	return (p.page - 1) * p.pageSize
}

func (p *PageRequest) GetFilter() *QueryFilter { return p.filter }

func (p *PageRequest) GetOrders() []string { return p.orders }

// Pagination is one page of T along with the size of the whole listing.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

func NewDefaultPagination[T any](page, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}

// Pages is the number of pages of the listing, 0 when it is empty.
func (p *Pagination[T]) Pages() int {
	if p.Total == 0 || p.PageSize < 1 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p *Pagination[T]) HasNext() bool {
	return p.Page < p.Pages()
}
