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
	"encoding/json"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const (
	msgOwnerNull     = "owner object is null"
	msgAccountNull   = "account object is null"
	msgInvalidModel  = "invalid model object"
	msgInvalidID     = "invalid id"
	msgOwnerNotFound = "owner not found"
	msgAcctNotFound  = "account not found"
	msgUnknownOwner  = "owner of the account does not exist"
	msgInternalError = "internal server error"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		loggerFrom(r).WithError(errors.WithStack(err)).Error("could not encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, details ...string) {
	writeJSON(w, r, status, &errorResponse{Error: message, Details: details})
}

func writeInternalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	loggerFrom(r).WithError(err).Error(message)
	writeError(w, r, http.StatusInternalServerError, msgInternalError)
}

// resourceURL builds the absolute location of a created resource, honouring
// X-Forwarded-Proto and X-Forwarded-Host set by a reverse proxy.
func resourceURL(r *http.Request, elem ...string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme, _, _ = strings.Cut(proto, ",")
		scheme = strings.TrimSpace(scheme)
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	u := url.URL{Scheme: scheme, Host: host, Path: path.Join(elem...)}
	return u.String()
}
