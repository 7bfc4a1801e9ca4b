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

package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

var sqlErrorNames = map[SQLError]string{
	UnknownErr:                  "unknown",
	NoRowsErr:                   "no_rows",
	NoIndexErr:                  "no_index",
	NoColumnErr:                 "no_column",
	ExistIndexErr:               "exist_index",
	ExistColumnErr:              "exist_column",
	NoTableErr:                  "no_table",
	ExistTableErr:               "exist_table",
	DuplicateKeyErr:             "duplicate_key",
	NotNullViolationErr:         "not_null_violation",
	ForeignKeyViolationErr:      "foreign_key_violation",
	CheckConstraintViolationErr: "check_constraint_violation",
	DataTruncatedErr:            "data_truncated",
	InvalidTypeCastErr:          "invalid_type_cast",
}

func (e SQLError) String() string {
	if name, ok := sqlErrorNames[e]; ok {
		return name
	}
	return "unknown"
}

var mysqlErrorNumbers = map[uint16]SQLError{
	1091: NoIndexErr,
	1054: NoColumnErr,
	1061: ExistIndexErr,
	1060: ExistColumnErr,
	1146: NoTableErr,
	1050: ExistTableErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1406: DataTruncatedErr,
}

var postgresErrorCodes = map[pq.ErrorCode]SQLError{
	"42703": NoColumnErr,
	"42704": NoIndexErr,
	"42P01": NoTableErr,
	"42P07": ExistTableErr,
	"42701": ExistColumnErr,
	"23505": DuplicateKeyErr,
	"23502": NotNullViolationErr,
	"23503": ForeignKeyViolationErr,
	"23514": CheckConstraintViolationErr,
	"22001": DataTruncatedErr,
	"42804": InvalidTypeCastErr,
}

// messageRules match driver messages for drivers without typed errors
// (sqlite) and wrapped errors that lost their type. Order matters.
var messageRules = []struct {
	kind SQLError
	all  []string
	any  []string
}{
	{kind: NoColumnErr, any: []string{"sqlstate 42703", "undefined column", "no such column"}},
	{kind: NoIndexErr, any: []string{"sqlstate 42704", "no such index"}},
	{kind: NoIndexErr, all: []string{"does not exist", "index"}},
	{kind: NoTableErr, any: []string{"sqlstate 42p01", "undefined table", "no such table"}},
	{kind: ExistIndexErr, all: []string{"already exists", "index"}},
	{kind: ExistTableErr, all: []string{"already exists", "table"}},
	{kind: ExistTableErr, all: []string{"already exists", "relation"}},
	{kind: DuplicateKeyErr, any: []string{"duplicate key value", "unique constraint failed", "sqlstate 23505"}},
	{kind: NotNullViolationErr, any: []string{"not-null constraint", "not null constraint failed", "sqlstate 23502"}},
	{kind: ForeignKeyViolationErr, any: []string{"foreign key violation", "foreign key constraint failed", "sqlstate 23503"}},
	{kind: CheckConstraintViolationErr, any: []string{"check constraint", "sqlstate 23514"}},
	{kind: DataTruncatedErr, any: []string{"string data right truncation", "data truncated", "sqlstate 22001"}},
	{kind: InvalidTypeCastErr, any: []string{"datatype mismatch", "sqlstate 42804"}},
}

// IsSqlError classifies err. The first result reports whether err came
// from the database at all.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrorNumbers[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if kind, ok := postgresErrorCodes[pqErr.Code]; ok {
			return true, kind
		}
		return true, UnknownErr
	}

	s := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		if matchesAll(s, rule.all) && matchesAny(s, rule.any) {
			return true, rule.kind
		}
	}
	return false, UnknownErr
}

// IsForeignKeyViolation reports whether err is a rejected foreign key.
func IsForeignKeyViolation(err error) bool {
	_, kind := IsSqlError(err)
	return kind == ForeignKeyViolationErr
}

func matchesAll(s string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}

func matchesAny(s string, parts []string) bool {
	if len(parts) == 0 {
		return true
	}
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
