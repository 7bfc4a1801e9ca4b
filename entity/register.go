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

// Package entity holds the persisted Owner and Account models and registers
// their tables, indexes and foreign keys with the database package.
package entity

import "github.com/tomoncle/accountowner/database"

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Owner)(nil), 1))
	database.RegisteredModel(database.NewModelAdapter((*Account)(nil), 2))

	database.RegisterIndex(database.IndexDefinition{
		Table:   "account",
		Name:    "idx_account_owner_id",
		Columns: []string{"owner_id"},
	})

	database.RegisterForeignKey(database.ForeignKeyConstraint{
		Table:           "account",
		Column:          "owner_id",
		ReferenceTable:  "owner",
		ReferenceColumn: "owner_id",
		OnDelete:        "RESTRICT",
		ConstraintName:  "fk_account_owner",
	})
}
