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
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/accountowner/types"
)

type baseRepositoryImpl[T any] struct {
	session *Session
}

func newBaseRepository[T any](session *Session) *baseRepositoryImpl[T] {
	return &baseRepositoryImpl[T]{session: session}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.session.Dialect() }

func (r *baseRepositoryImpl[T]) FindAll() *Query[T] {
	return newQuery[T](r.session)
}

func (r *baseRepositoryImpl[T]) FindByCondition(filter *types.QueryFilter) *Query[T] {
	return newQuery[T](r.session).Filter(filter)
}

func (r *baseRepositoryImpl[T]) Create(entity *T) {
	if entity != nil {
		r.session.stage(changeInsert, entity)
	}
}

func (r *baseRepositoryImpl[T]) Update(entity *T) {
	if entity != nil {
		r.session.stage(changeUpdate, entity)
	}
}

func (r *baseRepositoryImpl[T]) Remove(entity *T) {
	if entity != nil {
		r.session.stage(changeDelete, entity)
	}
}
