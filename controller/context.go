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
	"context"

	"github.com/tomoncle/accountowner/repository"
)

type contextKey string

const keyRepository contextKey = "repository"

// Repository returns the request scoped repository wrapper, or nil outside
// a request opened by the session middleware.
func Repository(ctx context.Context) *repository.Wrapper {
	w, ok := ctx.Value(keyRepository).(*repository.Wrapper)
	if !ok {
		return nil
	}

	return w
}

func setRepository(ctx context.Context, w *repository.Wrapper) context.Context {
	return context.WithValue(ctx, keyRepository, w)
}
