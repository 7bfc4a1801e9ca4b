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

// Package repotest opens migrated in-memory databases for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tomoncle/accountowner/database"
	_ "github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/repository"
)

// Config returns a database config pointing at a private in-memory sqlite
// database with migrations enabled and health checks off.
func Config() *database.Config {
	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.DBName = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	cfg.ConnectionConfig.HealthCheckInterval = 0
	cfg.ConnectionConfig.EnableReconnect = false
	cfg.ConnectionConfig.SlowQueryTime = 0
	cfg.ConnectionConfig.MaxIdleConns = 4
	cfg.ConnectionConfig.MaxOpenConns = 4
	cfg.ConnectionConfig.ConnMaxIdleTime = time.Hour
	cfg.DataInitConfig.Filepath = ""
	return cfg
}

// NewDB connects and migrates a fresh database, closed when the test ends.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()
	manager := database.NewDatabaseManager(Config())
	ctx := context.Background()
	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = manager.Disconnect() })
	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return manager.GetDB()
}

// NewWrapper opens a session on db, closed when the test ends.
func NewWrapper(t testing.TB, db *bun.DB) *repository.Wrapper {
	t.Helper()
	session, err := repository.OpenSession(context.Background(), db)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return repository.NewWrapper(session)
}
