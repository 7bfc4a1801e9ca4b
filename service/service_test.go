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

package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomoncle/accountowner/repository/repotest"
	"github.com/tomoncle/accountowner/service"
	"github.com/tomoncle/accountowner/types"
)

var jean = service.OwnerFields{
	Name:        "Jean",
	DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	Address:     "1 Rue de Paris",
}

func TestDeleteOwnerWithoutAccounts(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	owners := service.NewOwnerService(repotest.NewWrapper(t, db))

	owner, err := owners.CreateOwner(ctx, jean)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	outcome, err := owners.DeleteOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if outcome != service.DeleteOutcomeDeleted {
		t.Fatalf("outcome = %s, want deleted", outcome)
	}

	all, err := service.NewOwnerService(repotest.NewWrapper(t, db)).GetAllOwners(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, o := range all {
		if o.ID == owner.ID {
			t.Fatal("deleted owner still listed")
		}
	}
}

func TestDeleteOwnerWithAccountsIsRejected(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	w := repotest.NewWrapper(t, db)
	owners := service.NewOwnerService(w)
	accounts := service.NewAccountService(w)

	owner, err := owners.CreateOwner(ctx, jean)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if _, err := accounts.CreateAccount(ctx, service.AccountFields{
		DateCreated: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		AccountType: "Domestic",
		OwnerID:     owner.ID,
	}); err != nil {
		t.Fatalf("create account: %v", err)
	}

	outcome, err := owners.DeleteOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if outcome != service.DeleteOutcomeHasAccounts {
		t.Fatalf("outcome = %s, want has_accounts", outcome)
	}
	if w.Session().Pending() != 0 {
		t.Fatal("rejected deletion left staged changes")
	}

	got, err := service.NewOwnerService(repotest.NewWrapper(t, db)).GetOwnerByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("owner gone after rejected delete: %v", err)
	}
	if got.ID != owner.ID {
		t.Fatalf("unexpected owner %+v", got)
	}
}

func TestDeleteOwnerNotFound(t *testing.T) {
	owners := service.NewOwnerService(repotest.NewWrapper(t, repotest.NewDB(t)))
	outcome, err := owners.DeleteOwner(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if outcome != service.DeleteOutcomeNotFound {
		t.Fatalf("outcome = %s, want not_found", outcome)
	}
}

func TestOwnerNotFoundErrors(t *testing.T) {
	ctx := context.Background()
	owners := service.NewOwnerService(repotest.NewWrapper(t, repotest.NewDB(t)))
	id := uuid.New()

	if _, err := owners.GetOwnerByID(ctx, id); !errors.Is(err, service.ErrOwnerNotFound) {
		t.Errorf("GetOwnerByID err = %v", err)
	}
	if _, err := owners.GetOwnerWithDetails(ctx, id); !errors.Is(err, service.ErrOwnerNotFound) {
		t.Errorf("GetOwnerWithDetails err = %v", err)
	}
	if err := owners.UpdateOwner(ctx, id, jean); !errors.Is(err, service.ErrOwnerNotFound) {
		t.Errorf("UpdateOwner err = %v", err)
	}
}

func TestUpdateOwner(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	owners := service.NewOwnerService(repotest.NewWrapper(t, db))

	owner, err := owners.CreateOwner(ctx, jean)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	changed := jean
	changed.Address = "2 Avenue Foch"
	if err := owners.UpdateOwner(ctx, owner.ID, changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := service.NewOwnerService(repotest.NewWrapper(t, db)).GetOwnerByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Address != "2 Avenue Foch" || got.Name != "Jean" {
		t.Fatalf("unexpected owner after update: %+v", got)
	}
}

func TestPageOwners(t *testing.T) {
	ctx := context.Background()
	owners := service.NewOwnerService(repotest.NewWrapper(t, repotest.NewDB(t)))
	for _, name := range []string{"Chloé", "Bruno", "Anna"} {
		fields := jean
		fields.Name = name
		if _, err := owners.CreateOwner(ctx, fields); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	page, err := owners.PageOwners(ctx, types.NewDefaultPageRequest(1, 2))
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || page.Items[0].Name != "Anna" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	w := repotest.NewWrapper(t, db)
	owners := service.NewOwnerService(w)
	accounts := service.NewAccountService(w)

	owner, err := owners.CreateOwner(ctx, jean)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	other, err := owners.CreateOwner(ctx, service.OwnerFields{Name: "Paul", DateOfBirth: jean.DateOfBirth, Address: "3 Quai"})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}

	fields := service.AccountFields{
		DateCreated: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		AccountType: "Savings",
		OwnerID:     owner.ID,
	}
	account, err := accounts.CreateAccount(ctx, fields)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if account.ID == uuid.Nil {
		t.Fatal("account id not assigned")
	}

	fields.OwnerID = other.ID
	if err := accounts.UpdateAccount(ctx, account.ID, fields); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := service.NewAccountService(repotest.NewWrapper(t, db)).GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != other.ID {
		t.Fatalf("owner not moved: %+v", got)
	}

	if err := accounts.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := accounts.GetAccountByID(ctx, account.ID); !errors.Is(err, service.ErrAccountNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	if err := accounts.DeleteAccount(ctx, account.ID); !errors.Is(err, service.ErrAccountNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	all, err := accounts.GetAllAccounts(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("accounts = %v, %v; want none", all, err)
	}
}

func TestAccountUnknownOwner(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))
	accounts := service.NewAccountService(w)

	_, err := accounts.CreateAccount(ctx, service.AccountFields{
		DateCreated: time.Now().UTC(),
		AccountType: "Domestic",
		OwnerID:     uuid.New(),
	})
	if !errors.Is(err, service.ErrUnknownOwner) {
		t.Fatalf("err = %v, want ErrUnknownOwner", err)
	}
	if w.Session().Pending() != 0 {
		t.Fatal("account staged for unknown owner")
	}

	if err := accounts.UpdateAccount(ctx, uuid.New(), service.AccountFields{OwnerID: uuid.New()}); !errors.Is(err, service.ErrAccountNotFound) {
		t.Fatalf("update err = %v, want ErrAccountNotFound", err)
	}
}

func TestDeleteOutcomeEnum(t *testing.T) {
	tests := []struct {
		outcome service.DeleteOutcome
		name    string
		number  int
	}{
		{service.DeleteOutcomeDeleted, "deleted", 0},
		{service.DeleteOutcomeNotFound, "not_found", 1},
		{service.DeleteOutcomeHasAccounts, "has_accounts", 2},
		{service.DeleteOutcome(42), types.IllegalName, types.IllegalValue},
	}
	for _, tt := range tests {
		if got := tt.outcome.Name(); got != tt.name {
			t.Errorf("Name() = %q, want %q", got, tt.name)
		}
		if got := tt.outcome.Number(); got != tt.number {
			t.Errorf("Number() = %d, want %d", got, tt.number)
		}
		if tt.outcome.IsValid() != (tt.number != types.IllegalValue) {
			t.Errorf("IsValid() wrong for %q", tt.name)
		}
		if parsed, ok := service.ParseDeleteOutcome(tt.name); tt.outcome.IsValid() && (!ok || parsed != tt.outcome) {
			t.Errorf("ParseDeleteOutcome(%q) = %v, %v", tt.name, parsed, ok)
		}
	}
}
