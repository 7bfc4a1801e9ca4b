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

package controller

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/service"
)

const dateLayout = "2006-01-02"

// Date accepts "2006-01-02" or RFC 3339 and renders "2006-01-02" when the
// value has no time of day.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date { return Date{Time: t} }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	h, m, s := d.Clock()
	if h == 0 && m == 0 && s == 0 && d.Nanosecond() == 0 {
		return json.Marshal(d.Format(dateLayout))
	}
	return json.Marshal(d.Format(time.RFC3339Nano))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.WithStack(err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return errors.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", raw)
}

type OwnerDto struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	DateOfBirth Date          `json:"dateOfBirth"`
	Address     string        `json:"address"`
	Accounts    []*AccountDto `json:"accounts,omitempty"`
}

type OwnerForCreationDto struct {
	Name        string `json:"name" validate:"required,notblank,max=60"`
	DateOfBirth Date   `json:"dateOfBirth" validate:"required"`
	Address     string `json:"address" validate:"required,notblank,max=100"`
}

type OwnerForUpdateDto OwnerForCreationDto

type AccountDto struct {
	ID          uuid.UUID `json:"id"`
	DateCreated Date      `json:"dateCreated"`
	AccountType string    `json:"accountType"`
	OwnerID     uuid.UUID `json:"ownerId"`
}

type AccountForCreationDto struct {
	DateCreated Date      `json:"dateCreated" validate:"required"`
	AccountType string    `json:"accountType" validate:"required,notblank"`
	OwnerID     uuid.UUID `json:"ownerId" validate:"required"`
}

type AccountForUpdateDto AccountForCreationDto

func toOwnerDto(o *entity.Owner, withAccounts bool) *OwnerDto {
	dto := &OwnerDto{
		ID:          o.ID,
		Name:        o.Name,
		DateOfBirth: NewDate(o.DateOfBirth),
		Address:     o.Address,
	}
	if withAccounts {
		dto.Accounts = make([]*AccountDto, 0, len(o.Accounts))
		for _, a := range o.Accounts {
			dto.Accounts = append(dto.Accounts, toAccountDto(a))
		}
	}
	return dto
}

func toOwnerDtos(owners []*entity.Owner) []*OwnerDto {
	out := make([]*OwnerDto, 0, len(owners))
	for _, o := range owners {
		out = append(out, toOwnerDto(o, false))
	}
	return out
}

func toAccountDto(a *entity.Account) *AccountDto {
	return &AccountDto{
		ID:          a.ID,
		DateCreated: NewDate(a.DateCreated),
		AccountType: a.AccountType,
		OwnerID:     a.OwnerID,
	}
}

func toAccountDtos(accounts []*entity.Account) []*AccountDto {
	out := make([]*AccountDto, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountDto(a))
	}
	return out
}

func (d *OwnerForCreationDto) fields() service.OwnerFields {
	return service.OwnerFields{Name: d.Name, DateOfBirth: d.DateOfBirth.Time, Address: d.Address}
}

func (d *AccountForCreationDto) fields() service.AccountFields {
	return service.AccountFields{DateCreated: d.DateCreated.Time, AccountType: d.AccountType, OwnerID: d.OwnerID}
}
