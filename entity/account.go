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

package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account belongs to exactly one Owner through OwnerID.
type Account struct {
	bun.BaseModel `bun:"table:account,alias:a"`

	ID          uuid.UUID `bun:"account_id,pk,type:varchar(36)"`
	DateCreated time.Time `bun:"date_created,notnull"`
	AccountType string    `bun:"account_type,notnull"`
	OwnerID     uuid.UUID `bun:"owner_id,notnull,type:varchar(36)"`
	Owner       *Owner    `bun:"rel:belongs-to,join:owner_id=owner_id"`
}

var _ bun.BeforeAppendModelHook = (*Account)(nil)

func (a *Account) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
