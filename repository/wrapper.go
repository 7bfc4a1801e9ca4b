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

	"github.com/tomoncle/accountowner/metrics"
)

// Wrapper groups the owner and account repositories of one session and
// commits their staged changes together.
type Wrapper struct {
	session *Session

	owner       OwnerRepository
	ownerOnce   sync.Once
	account     AccountRepository
	accountOnce sync.Once
}

func NewWrapper(session *Session) *Wrapper {
	return &Wrapper{session: session}
}

func (w *Wrapper) Session() *Session {
	return w.session
}

func (w *Wrapper) Owner() OwnerRepository {
	w.ownerOnce.Do(func() { w.owner = NewOwnerRepository(w.session) })
	return w.owner
}

func (w *Wrapper) Account() AccountRepository {
	w.accountOnce.Do(func() { w.account = NewAccountRepository(w.session) })
	return w.account
}

// Save commits everything staged through Owner() and Account().
func (w *Wrapper) Save(ctx context.Context) error {
	if err := w.session.Save(ctx); err != nil {
		metrics.RepositorySaves.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}
	metrics.RepositorySaves.WithLabelValues(metrics.ResultSuccess).Inc()
	return nil
}

// Atomic runs fn in a single transaction; see Session.Atomic.
func (w *Wrapper) Atomic(ctx context.Context, fn func(ctx context.Context, w *Wrapper) error) error {
	return w.session.Atomic(ctx, func(ctx context.Context) error {
		return fn(ctx, w)
	})
}
