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

const (
	OwnerNameMaxLength    = 60
	OwnerAddressMaxLength = 100
)

// Owner is a person holding zero or more accounts.
type Owner struct {
	bun.BaseModel `bun:"table:owner,alias:o"`

	ID          uuid.UUID  `bun:"owner_id,pk,type:varchar(36)"`
	Name        string     `bun:"name,notnull,type:varchar(60)"`
	DateOfBirth time.Time  `bun:"date_of_birth,notnull"`
	Address     string     `bun:"address,notnull,type:varchar(100)"`
	Accounts    []*Account `bun:"rel:has-many,join:owner_id=owner_id"`
}

var _ bun.BeforeAppendModelHook = (*Owner)(nil)

// BeforeAppendModel assigns a fresh id to owners inserted without one.
func (o *Owner) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
