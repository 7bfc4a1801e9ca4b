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

	"github.com/google/uuid"

	"github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/types"
)

type ownerRepository struct {
	*baseRepositoryImpl[entity.Owner]
}

var _ OwnerRepository = (*ownerRepository)(nil)

func NewOwnerRepository(session *Session) OwnerRepository {
	return &ownerRepository{newBaseRepository[entity.Owner](session)}
}

func (r *ownerRepository) byID(id uuid.UUID) *Query[entity.Owner] {
	return r.FindByCondition(types.NewQueryFilter("?TableAlias.owner_id = ?", id.String()))
}

func (r *ownerRepository) GetAllOwners(ctx context.Context) ([]*entity.Owner, error) {
	return r.FindAll().Order("name ASC").List(ctx)
}

func (r *ownerRepository) GetOwnerByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	return r.byID(id).First(ctx)
}

func (r *ownerRepository) GetOwnerForUpdate(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	return r.byID(id).ForUpdate().First(ctx)
}

func (r *ownerRepository) GetOwnerWithDetails(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	owner, err := r.byID(id).Relation("Accounts").First(ctx)
	if err != nil || owner == nil {
		return owner, err
	}
	if owner.Accounts == nil {
		owner.Accounts = make([]*entity.Account, 0)
	}
	return owner, nil
}

func (r *ownerRepository) PageOwners(ctx context.Context, page *types.PageRequest) (*types.Pagination[entity.Owner], error) {
	return r.FindAll().Order("name ASC").Page(ctx, page)
}

func (r *ownerRepository) CreateOwner(owner *entity.Owner) { r.Create(owner) }

func (r *ownerRepository) UpdateOwner(owner *entity.Owner) { r.Update(owner) }

func (r *ownerRepository) DeleteOwner(owner *entity.Owner) { r.Remove(owner) }
