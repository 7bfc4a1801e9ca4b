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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/uptrace/bun"

	"github.com/tomoncle/accountowner/config"
	"github.com/tomoncle/accountowner/database"
	"github.com/tomoncle/accountowner/metrics"
)

const maxBodySize = 1 << 20

type HealthFunc func(ctx context.Context) *database.HealthStatus

type Options struct {
	Health HealthFunc
}

type OptionFunc func(opts *Options)

// WithHealthCheck replaces the default ping based health check, typically
// with the database manager's HealthCheck.
func WithHealthCheck(fn HealthFunc) OptionFunc {
	return func(opts *Options) {
		opts.Health = fn
	}
}

type Handler struct {
	db       *bun.DB
	basePath string
	validate *validator.Validate
	health   HealthFunc
	mux      *http.ServeMux
	root     http.Handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

func NewHandler(db *bun.DB, conf config.HTTP, funcs ...OptionFunc) *Handler {
	opts := &Options{}
	for _, fn := range funcs {
		fn(opts)
	}

	h := &Handler{
		db:       db,
		basePath: "/" + strings.Trim(conf.BasePath, "/"),
		validate: newValidator(),
		health:   opts.Health,
		mux:      &http.ServeMux{},
	}
	if h.health == nil {
		h.health = h.ping
	}

	api := func(method, pattern string, fn http.HandlerFunc) {
		h.mux.Handle(method+" "+path.Join(h.basePath, pattern), withRepository(db, fn))
	}

	api("GET", "/owner", h.handleListOwners)
	api("POST", "/owner", h.handleCreateOwner)
	api("GET", "/owner/{id}", h.handleGetOwner)
	api("PUT", "/owner/{id}", h.handleUpdateOwner)
	api("DELETE", "/owner/{id}", h.handleDeleteOwner)
	api("GET", "/owner/{id}/account", h.handleGetOwnerWithDetails)

	api("GET", "/account", h.handleListAccounts)
	api("POST", "/account", h.handleCreateAccount)
	api("GET", "/account/{id}", h.handleGetAccount)
	api("PUT", "/account/{id}", h.handleUpdateAccount)
	api("DELETE", "/account/{id}", h.handleDeleteAccount)

	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.Handle("GET /metrics", metrics.Handler())

	h.root = cors.New(cors.Options{
		AllowedOrigins:   conf.CORS.AllowedOrigins,
		AllowedMethods:   conf.CORS.AllowedMethods,
		AllowedHeaders:   conf.CORS.AllowedHeaders,
		ExposedHeaders:   conf.CORS.ExposedHeaders,
		AllowCredentials: conf.CORS.AllowCredentials,
	}).Handler(Observe(h.mux))

	return h
}

var _ http.Handler = &Handler{}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := h.health(r.Context())
	code := http.StatusOK
	if status == nil || !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

func (h *Handler) ping(ctx context.Context) *database.HealthStatus {
	start := time.Now()
	status := &database.HealthStatus{LastCheckTime: start}
	err := h.db.PingContext(ctx)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
		return status
	}
	stats := h.db.Stats()
	status.Healthy = true
	status.Connected = true
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

func (h *Handler) location(r *http.Request, resource string, id uuid.UUID) string {
	return resourceURL(r, h.basePath, resource, id.String())
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody reads a JSON body into dst. It reports false, without error,
// when the body is empty or the literal null.
func decodeBody(r *http.Request, dst any) (bool, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return false, errors.WithStack(err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, errors.WithStack(err)
	}
	return true, nil
}

// bind decodes and validates a request body, writing the 400 response itself
// when it fails.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, dst any, nullMessage string) bool {
	present, err := decodeBody(r, dst)
	switch {
	case err != nil:
		loggerFrom(r).WithError(err).Error("invalid object sent from client")
		writeError(w, r, http.StatusBadRequest, msgInvalidModel, errors.Cause(err).Error())
		return false
	case !present:
		loggerFrom(r).Error(nullMessage + " sent from client")
		writeError(w, r, http.StatusBadRequest, nullMessage)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		loggerFrom(r).WithError(err).Error("invalid object sent from client")
		writeError(w, r, http.StatusBadRequest, msgInvalidModel, validationMessages(err)...)
		return false
	}
	return true
}

func getQueryInt(query url.Values, name string, defaultValue int) int {
	raw := query.Get(name)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return defaultValue
	}

	return int(value)
}
