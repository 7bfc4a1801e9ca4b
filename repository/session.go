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
	"sync"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/accountowner/database"
)

var ErrSessionClosed = errors.New("repository: session is closed")

type changeKind int

const (
	changeInsert changeKind = iota + 1
	changeUpdate
	changeDelete
)

func (k changeKind) String() string {
	switch k {
	case changeInsert:
		return "insert"
	case changeUpdate:
		return "update"
	case changeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

type change struct {
	kind    changeKind
	model   any
	dropped bool
}

// Session is a unit of work bound to one pooled connection. Reads run
// immediately on the connection (or on the transaction opened by Atomic);
// writes are staged per entity pointer and flushed together by Save.
//
// A Session is meant for a single request and must be closed to give the
// connection back to the pool.
type Session struct {
	db     *bun.DB
	conn   bun.Conn
	logger database.Logger

	mu      sync.Mutex
	tx      *bun.Tx
	changes []*change
	index   map[any]*change
	closed  bool
}

// OpenSession reserves a connection from db for the lifetime of the session.
func OpenSession(ctx context.Context, db *bun.DB) (*Session, error) {
	if db == nil {
		return nil, errors.New("repository: database not initialized")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not acquire database connection")
	}
	return &Session{
		db:     db,
		conn:   conn,
		logger: database.NewNamedLogger("REPOSITORY"),
		index:  make(map[any]*change),
	}, nil
}

// Close drops every staged change and releases the connection.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.changes = nil
	s.index = nil
	return errors.WithStack(s.conn.Close())
}

func (s *Session) Dialect() schema.Dialect {
	return s.db.Dialect()
}

// SupportsRowLocking reports whether SELECT ... FOR UPDATE is available.
// sqlite serialises writers with its database lock instead.
func (s *Session) SupportsRowLocking() bool {
	return s.db.Dialect().Name() != dialect.SQLite
}

// Pending returns the number of staged changes waiting for Save.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.changes {
		if !c.dropped {
			n++
		}
	}
	return n
}

// idb is the handle reads and flushes run on.
func (s *Session) idb() (bun.IDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	return &s.conn, nil
}

// stage records a change for model. Later changes to the same pointer are
// merged into the earlier one so that Save issues at most one statement per
// entity.
func (s *Session) stage(kind changeKind, model any) {
	if model == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	prev, ok := s.index[model]
	if !ok {
		c := &change{kind: kind, model: model}
		s.changes = append(s.changes, c)
		s.index[model] = c
		return
	}

	switch {
	case prev.kind == changeInsert && kind == changeDelete:
		// never written, nothing to remove
		prev.dropped = true
		delete(s.index, model)
	case prev.kind == changeUpdate && kind == changeDelete:
		prev.kind = changeDelete
	case prev.kind == changeDelete && kind == changeInsert:
		prev.kind = changeUpdate
	}
}

func (s *Session) pending() []*change {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*change, 0, len(s.changes))
	for _, c := range s.changes {
		if !c.dropped {
			out = append(out, c)
		}
	}
	return out
}

func (s *Session) reset(flushed []*change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	done := make(map[*change]struct{}, len(flushed))
	for _, c := range flushed {
		done[c] = struct{}{}
		if s.index[c.model] == c {
			delete(s.index, c.model)
		}
	}
	kept := s.changes[:0]
	for _, c := range s.changes {
		if _, ok := done[c]; ok || c.dropped {
			continue
		}
		kept = append(kept, c)
	}
	s.changes = kept
}

// Save flushes the staged changes in staging order inside one transaction.
// On failure nothing is committed and the changes stay staged.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	closed, tx := s.closed, s.tx
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	changes := s.pending()
	if len(changes) == 0 {
		s.reset(nil)
		return nil
	}

	var err error
	if tx != nil {
		err = s.flush(ctx, tx, changes)
	} else {
		err = s.conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return s.flush(ctx, &tx, changes)
		})
	}
	if err != nil {
		return errors.WithStack(err)
	}

	s.reset(changes)
	return nil
}

func (s *Session) flush(ctx context.Context, db bun.IDB, changes []*change) error {
	for _, c := range changes {
		var err error
		switch c.kind {
		case changeInsert:
			_, err = db.NewInsert().Model(c.model).Exec(ctx)
		case changeUpdate:
			_, err = db.NewUpdate().Model(c.model).WherePK().Exec(ctx)
		case changeDelete:
			_, err = db.NewDelete().Model(c.model).WherePK().Exec(ctx)
		}
		if err != nil {
			if is, kind := database.IsSqlError(err); is {
				s.logger.Error("Flushing staged change failed", "op", c.kind.String(), "sql_error", kind.String(), "error", err)
			}
			return errors.Wrapf(err, "could not %s %T", c.kind, c.model)
		}
	}
	return nil
}

// Atomic runs fn inside a transaction on the session's connection. Reads and
// Save calls made by fn use that transaction; it commits when fn returns nil
// and rolls back otherwise. Nested calls join the running transaction.
func (s *Session) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	nested := s.tx != nil
	s.mu.Unlock()

	if nested {
		return fn(ctx)
	}

	return s.conn.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		s.setTx(&tx)
		defer s.setTx(nil)
		return fn(ctx)
	})
}

func (s *Session) setTx(tx *bun.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = tx
}
