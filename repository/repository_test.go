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

package repository_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/repository"
	"github.com/tomoncle/accountowner/repository/repotest"
	"github.com/tomoncle/accountowner/types"
)

func newOwner(name string) *entity.Owner {
	return &entity.Owner{
		Name:        name,
		DateOfBirth: time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC),
		Address:     "12 Main Street",
	}
}

func newAccount(ownerID uuid.UUID, accountType string, created time.Time) *entity.Account {
	return &entity.Account{
		OwnerID:     ownerID,
		AccountType: accountType,
		DateCreated: created,
	}
}

func mustSave(t *testing.T, w *repository.Wrapper) {
	t.Helper()
	if err := w.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestOwnerRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)

	w := repotest.NewWrapper(t, db)
	owner := &entity.Owner{
		Name:        "Jean",
		Address:     "1 Rue de Paris",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	w.Owner().CreateOwner(owner)
	if owner.ID != uuid.Nil {
		t.Fatalf("id assigned before Save: %s", owner.ID)
	}
	mustSave(t, w)
	if owner.ID == uuid.Nil {
		t.Fatal("expected an id after Save")
	}

	// read back through a different session
	got, err := repotest.NewWrapper(t, db).Owner().GetOwnerByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("owner not found")
	}
	if got.ID != owner.ID || got.Name != "Jean" || got.Address != "1 Rue de Paris" {
		t.Errorf("unexpected owner: %+v", got)
	}
	if !got.DateOfBirth.Equal(owner.DateOfBirth) {
		t.Errorf("date of birth = %v, want %v", got.DateOfBirth, owner.DateOfBirth)
	}
}

func TestGetOwnerByIDUnknown(t *testing.T) {
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	got, err := w.Owner().GetOwnerByID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}

	details, err := w.Owner().GetOwnerWithDetails(context.Background(), uuid.New())
	if err != nil || details != nil {
		t.Fatalf("expected nil, nil; got %+v, %v", details, err)
	}
}

func TestGetAllOwnersSortedByName(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	for _, name := range []string{"Zoé", "Alice", "Martin"} {
		w.Owner().CreateOwner(newOwner(name))
	}
	mustSave(t, w)

	owners, err := w.Owner().GetAllOwners(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, o := range owners {
		names = append(names, o.Name)
	}
	want := []string{"Alice", "Martin", "Zoé"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestGetAllOwnersEmpty(t *testing.T) {
	owners, err := repotest.NewWrapper(t, repotest.NewDB(t)).Owner().GetAllOwners(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if owners == nil || len(owners) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", owners)
	}
}

func TestGetOwnerWithDetails(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	w := repotest.NewWrapper(t, db)

	alice, bob := newOwner("Alice"), newOwner("Bob")
	w.Owner().CreateOwner(alice)
	w.Owner().CreateOwner(bob)
	mustSave(t, w)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w.Account().CreateAccount(newAccount(alice.ID, "Domestic", day))
	w.Account().CreateAccount(newAccount(alice.ID, "Savings", day.AddDate(0, 0, 1)))
	w.Account().CreateAccount(newAccount(bob.ID, "Foreign", day))
	mustSave(t, w)

	got, err := repotest.NewWrapper(t, db).Owner().GetOwnerWithDetails(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("owner not found")
	}

	expected, err := w.Account().AccountsByOwner(ctx, alice.ID)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if len(got.Accounts) != len(expected) || len(expected) != 2 {
		t.Fatalf("got %d accounts, expected %d (want 2)", len(got.Accounts), len(expected))
	}

	ids := func(accounts []*entity.Account) []string {
		out := make([]string, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, a.ID.String())
		}
		sort.Strings(out)
		return out
	}
	gotIDs, wantIDs := ids(got.Accounts), ids(expected)
	for i := range wantIDs {
		if gotIDs[i] != wantIDs[i] {
			t.Fatalf("account ids = %v, want %v", gotIDs, wantIDs)
		}
	}
	for _, a := range got.Accounts {
		if a.OwnerID != alice.ID {
			t.Errorf("account %s belongs to %s", a.ID, a.OwnerID)
		}
	}

	empty := newOwner("Carol")
	w.Owner().CreateOwner(empty)
	mustSave(t, w)
	got, err = w.Owner().GetOwnerWithDetails(ctx, empty.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Accounts == nil || len(got.Accounts) != 0 {
		t.Fatalf("expected no accounts, got %#v", got.Accounts)
	}
}

func TestStagingRules(t *testing.T) {
	ctx := context.Background()

	t.Run("create then update inserts once", func(t *testing.T) {
		w := repotest.NewWrapper(t, repotest.NewDB(t))
		owner := newOwner("Draft")
		w.Owner().CreateOwner(owner)
		owner.Name = "Final"
		w.Owner().UpdateOwner(owner)
		if n := w.Session().Pending(); n != 1 {
			t.Fatalf("pending = %d, want 1", n)
		}
		mustSave(t, w)

		owners, err := w.Owner().GetAllOwners(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(owners) != 1 || owners[0].Name != "Final" {
			t.Fatalf("unexpected owners: %+v", owners)
		}
	})

	t.Run("create then remove writes nothing", func(t *testing.T) {
		w := repotest.NewWrapper(t, repotest.NewDB(t))
		owner := newOwner("Ghost")
		w.Owner().CreateOwner(owner)
		w.Owner().DeleteOwner(owner)
		if n := w.Session().Pending(); n != 0 {
			t.Fatalf("pending = %d, want 0", n)
		}
		mustSave(t, w)

		n, err := w.Owner().FindAll().Count(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Fatalf("count = %d, want 0", n)
		}
	})

	t.Run("update then remove deletes", func(t *testing.T) {
		w := repotest.NewWrapper(t, repotest.NewDB(t))
		owner := newOwner("Leaving")
		w.Owner().CreateOwner(owner)
		mustSave(t, w)

		owner.Name = "Left"
		w.Owner().UpdateOwner(owner)
		w.Owner().DeleteOwner(owner)
		if n := w.Session().Pending(); n != 1 {
			t.Fatalf("pending = %d, want 1", n)
		}
		mustSave(t, w)

		got, err := w.Owner().GetOwnerByID(ctx, owner.ID)
		if err != nil || got != nil {
			t.Fatalf("expected owner gone, got %+v, %v", got, err)
		}
	})

	t.Run("remove then create updates", func(t *testing.T) {
		w := repotest.NewWrapper(t, repotest.NewDB(t))
		owner := newOwner("Returning")
		w.Owner().CreateOwner(owner)
		mustSave(t, w)

		w.Owner().DeleteOwner(owner)
		owner.Name = "Returned"
		w.Owner().CreateOwner(owner)
		if n := w.Session().Pending(); n != 1 {
			t.Fatalf("pending = %d, want 1", n)
		}
		// an insert here would hit the primary key
		mustSave(t, w)

		got, err := w.Owner().GetOwnerByID(ctx, owner.ID)
		if err != nil || got == nil {
			t.Fatalf("owner missing: %+v, %v", got, err)
		}
		if got.Name != "Returned" {
			t.Fatalf("name = %q, want Returned", got.Name)
		}
	})

	t.Run("nothing reaches the database before save", func(t *testing.T) {
		db := repotest.NewDB(t)
		w := repotest.NewWrapper(t, db)
		w.Owner().CreateOwner(newOwner("Pending"))

		n, err := repotest.NewWrapper(t, db).Owner().FindAll().Count(ctx)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 0 {
			t.Fatalf("count = %d before save", n)
		}
	})
}

func TestRemoveOwner(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	keep, drop := newOwner("Keep"), newOwner("Drop")
	w.Owner().CreateOwner(keep)
	w.Owner().CreateOwner(drop)
	mustSave(t, w)

	w.Owner().DeleteOwner(drop)
	mustSave(t, w)

	owners, err := w.Owner().GetAllOwners(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owners) != 1 || owners[0].ID != keep.ID {
		t.Fatalf("unexpected owners after delete: %+v", owners)
	}
}

func TestSaveFailureKeepsStagedChanges(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	first := newOwner("First")
	w.Owner().CreateOwner(first)
	mustSave(t, w)

	ok := newOwner("Ok")
	clash := newOwner("Clash")
	clash.ID = first.ID
	w.Owner().CreateOwner(ok)
	w.Owner().CreateOwner(clash)

	if err := w.Save(ctx); err == nil {
		t.Fatal("expected a duplicate key error")
	}
	if n := w.Session().Pending(); n != 2 {
		t.Fatalf("pending = %d, want 2", n)
	}

	// the whole batch was rolled back
	got, err := w.Owner().GetOwnerByID(ctx, ok.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("owner from failed batch was committed: %+v", got)
	}
}

func TestAtomicRollback(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))
	boom := errors.New("boom")

	owner := newOwner("Rollback")
	err := w.Atomic(ctx, func(ctx context.Context, w *repository.Wrapper) error {
		w.Owner().CreateOwner(owner)
		if err := w.Save(ctx); err != nil {
			return err
		}
		found, err := w.Owner().GetOwnerByID(ctx, owner.ID)
		if err != nil {
			return err
		}
		if found == nil {
			t.Error("owner not visible inside its own transaction")
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, err := w.Owner().GetOwnerByID(ctx, owner.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("owner survived a rolled back transaction")
	}
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	owner := newOwner("Holder")
	w.Owner().CreateOwner(owner)
	mustSave(t, w)

	none, err := w.Account().AccountsByOwner(ctx, owner.ID)
	if err != nil || len(none) != 0 {
		t.Fatalf("AccountsByOwner = %v, %v; want none", none, err)
	}

	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	later := newAccount(owner.ID, "Savings", day.AddDate(0, 1, 0))
	earlier := newAccount(owner.ID, "Domestic", day)
	w.Account().CreateAccount(later)
	w.Account().CreateAccount(earlier)
	mustSave(t, w)

	all, err := w.Account().GetAllAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != earlier.ID {
		t.Fatalf("accounts not ordered by creation date: %+v", all)
	}

	later.AccountType = "Foreign"
	w.Account().UpdateAccount(later)
	mustSave(t, w)

	got, err := w.Account().GetAccountByID(ctx, later.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.AccountType != "Foreign" {
		t.Fatalf("update not persisted: %+v", got)
	}

	w.Account().DeleteAccount(got)
	mustSave(t, w)
	accounts, err := w.Account().AccountsByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("by owner: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != earlier.ID {
		t.Fatalf("unexpected accounts: %+v", accounts)
	}
}

func TestQueryPage(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	for _, name := range []string{"E", "D", "C", "B", "A"} {
		w.Owner().CreateOwner(newOwner(name))
	}
	mustSave(t, w)

	page, err := w.Owner().PageOwners(ctx, types.NewDefaultPageRequest(2, 2))
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if page.Total != 5 || page.Page != 2 || page.PageSize != 2 {
		t.Fatalf("unexpected pagination: %+v", page)
	}
	if len(page.Items) != 2 || page.Items[0].Name != "C" || page.Items[1].Name != "D" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}

	filtered, err := w.Owner().FindAll().Page(ctx,
		types.NewPageRequest(1, 10, types.NewQueryFilter("name IN (?, ?)", "A", "E"), "name DESC"))
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if filtered.Total != 2 || filtered.Items[0].Name != "E" {
		t.Fatalf("unexpected filtered page: %+v", filtered)
	}
}

func TestQueryIsDeferredAndImmutable(t *testing.T) {
	ctx := context.Background()
	w := repotest.NewWrapper(t, repotest.NewDB(t))

	all := w.Owner().FindAll()
	onlyA := all.Where("name = ?", "A")

	w.Owner().CreateOwner(newOwner("A"))
	w.Owner().CreateOwner(newOwner("B"))
	mustSave(t, w)

	// built before the rows existed, evaluated now
	n, err := all.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("all count = %d, %v; want 2", n, err)
	}
	n, err = onlyA.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("filtered count = %d, %v; want 1", n, err)
	}
	exists, err := w.Owner().FindByCondition(types.NewQueryFilter("name = ?", "Z")).Exists(ctx)
	if err != nil || exists {
		t.Fatalf("exists = %v, %v; want false", exists, err)
	}
}

func TestWrapperRepositoriesAreReused(t *testing.T) {
	w := repotest.NewWrapper(t, repotest.NewDB(t))
	if w.Owner() != w.Owner() {
		t.Error("owner repository rebuilt")
	}
	if w.Account() != w.Account() {
		t.Error("account repository rebuilt")
	}
}

func TestClosedSession(t *testing.T) {
	ctx := context.Background()
	db := repotest.NewDB(t)
	session, err := repository.OpenSession(ctx, db)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	w := repository.NewWrapper(session)
	w.Owner().CreateOwner(newOwner("Late"))

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Save(ctx); !errors.Is(err, repository.ErrSessionClosed) {
		t.Fatalf("save err = %v, want ErrSessionClosed", err)
	}
	if _, err := w.Owner().GetAllOwners(ctx); !errors.Is(err, repository.ErrSessionClosed) {
		t.Fatalf("list err = %v, want ErrSessionClosed", err)
	}
}
