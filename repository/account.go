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

type accountRepository struct {
	*baseRepositoryImpl[entity.Account]
}

var _ AccountRepository = (*accountRepository)(nil)

func NewAccountRepository(session *Session) AccountRepository {
	return &accountRepository{newBaseRepository[entity.Account](session)}
}

func (r *accountRepository) byOwner(ownerID uuid.UUID) *Query[entity.Account] {
	return r.FindByCondition(types.NewQueryFilter("?TableAlias.owner_id = ?", ownerID.String()))
}

func (r *accountRepository) AccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Account, error) {
	return r.byOwner(ownerID).Order("date_created ASC").List(ctx)
}

func (r *accountRepository) GetAllAccounts(ctx context.Context) ([]*entity.Account, error) {
	return r.FindAll().Order("date_created ASC").List(ctx)
}

func (r *accountRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return r.FindByCondition(types.NewQueryFilter("?TableAlias.account_id = ?", id.String())).First(ctx)
}

func (r *accountRepository) CreateAccount(account *entity.Account) { r.Create(account) }

func (r *accountRepository) UpdateAccount(account *entity.Account) { r.Update(account) }

func (r *accountRepository) DeleteAccount(account *entity.Account) { r.Remove(account) }
