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
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomoncle/accountowner/database"
	"github.com/tomoncle/accountowner/entity"
)

func openSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.ConnectionConfig.EnableReconnect = false
	manager := database.NewDatabaseManager(cfg)
	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = manager.Disconnect() })
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	session, err := OpenSession(ctx, manager.GetDB())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestSaveCompactsDroppedChanges(t *testing.T) {
	session := openSession(t)
	owners := NewOwnerRepository(session)

	for i := 0; i < 3; i++ {
		owner := &entity.Owner{Name: "Ghost", DateOfBirth: time.Now().UTC(), Address: "nowhere"}
		owners.CreateOwner(owner)
		owners.DeleteOwner(owner)
	}
	if len(session.changes) != 3 {
		t.Fatalf("changes = %d before save, want 3 dropped", len(session.changes))
	}

	if err := session.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(session.changes) != 0 || len(session.index) != 0 {
		t.Fatalf("changes = %d, index = %d after save", len(session.changes), len(session.index))
	}
}
