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
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/types"
)

// QueryRepository builds deferred read queries for T.
type QueryRepository[T any] interface {
	// FindAll selects every T, unordered.
	FindAll() *Query[T]

	// FindByCondition selects the T matching filter.
	FindByCondition(filter *types.QueryFilter) *Query[T]
}

// StagingRepository stages writes on the session; nothing reaches the
// database before Save.
type StagingRepository[T any] interface {
	Create(entity *T)
	Update(entity *T)
	Remove(entity *T)
}

// Repository combines deferred reads and staged writes over one session.
type Repository[T any] interface {
	QueryRepository[T]
	StagingRepository[T]
	Dialect() schema.Dialect
}

type OwnerRepository interface {
	Repository[entity.Owner]

	// GetAllOwners returns every owner sorted by name.
	GetAllOwners(ctx context.Context) ([]*entity.Owner, error)

	// GetOwnerByID returns nil, nil when no owner has this id.
	GetOwnerByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error)

	// GetOwnerForUpdate is GetOwnerByID with the row locked until the
	// surrounding transaction ends.
	GetOwnerForUpdate(ctx context.Context, id uuid.UUID) (*entity.Owner, error)

	// GetOwnerWithDetails is GetOwnerByID with Accounts loaded.
	GetOwnerWithDetails(ctx context.Context, id uuid.UUID) (*entity.Owner, error)

	PageOwners(ctx context.Context, page *types.PageRequest) (*types.Pagination[entity.Owner], error)

	CreateOwner(owner *entity.Owner)
	UpdateOwner(owner *entity.Owner)
	DeleteOwner(owner *entity.Owner)
}

type AccountRepository interface {
	Repository[entity.Account]

	// AccountsByOwner returns the accounts referencing ownerID.
	AccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Account, error)

	// GetAllAccounts returns every account sorted by creation date.
	GetAllAccounts(ctx context.Context) ([]*entity.Account, error)

	GetAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	CreateAccount(account *entity.Account)
	UpdateAccount(account *entity.Account)
	DeleteAccount(account *entity.Account)
}
