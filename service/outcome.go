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

package service

import "github.com/tomoncle/accountowner/types"

// DeleteOutcome is the business result of an owner deletion request.
type DeleteOutcome int

const (
	DeleteOutcomeDeleted DeleteOutcome = iota
	DeleteOutcomeNotFound
	DeleteOutcomeHasAccounts
)

var _ types.BaseEnum = DeleteOutcome(0)

var deleteOutcomes = types.EnumTable{
	DeleteOutcomeDeleted:     {Name: "deleted", Desc: "owner deleted"},
	DeleteOutcomeNotFound:    {Name: "not_found", Desc: "owner not found"},
	DeleteOutcomeHasAccounts: {Name: "has_accounts", Desc: "cannot delete owner, it has related accounts, delete those accounts first"},
}

// ParseDeleteOutcome is the inverse of Name.
func ParseDeleteOutcome(name string) (DeleteOutcome, bool) {
	n, ok := deleteOutcomes.Parse(name)
	return DeleteOutcome(n), ok
}

func (o DeleteOutcome) IsValid() bool { return deleteOutcomes.IsValid(int(o)) }

func (o DeleteOutcome) Number() int { return deleteOutcomes.Number(int(o)) }

func (o DeleteOutcome) Name() string { return deleteOutcomes.Name(int(o)) }

func (o DeleteOutcome) String() string { return o.Name() }

func (o DeleteOutcome) Desc() string { return deleteOutcomes.Desc(int(o)) }
