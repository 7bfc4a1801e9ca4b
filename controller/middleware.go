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
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/tomoncle/accountowner/metrics"
	"github.com/tomoncle/accountowner/repository"
	"github.com/tomoncle/accountowner/utils"
)

var logger = utils.NewLogger("HTTP")

func loggerFrom(r *http.Request) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"req_method": r.Method,
		"req_uri":    r.RequestURI,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Observe logs each request, records its metrics and turns a panic into a
// 500 response. The mux sets the matched pattern on the request it is given,
// so next must receive r unchanged.
func Observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				loggerFrom(r).WithField("panic", p).Error("request panicked")
				if rec.status == 0 {
					writeError(rec, r, http.StatusInternalServerError, msgInternalError)
				}
			}

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			latency := time.Since(start)

			metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(latency.Seconds())

			entry := loggerFrom(r).WithFields(logrus.Fields{
				"client_ip":    clientIP(r),
				"status_code":  status,
				"latency_time": latency.String(),
			})
			if status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Info("request handled")
			}
		}()

		next.ServeHTTP(rec, r)
	})
}

// withRepository opens one session per request and hands the handler a
// repository wrapper bound to it. The session, and the pooled connection it
// holds, is released when the handler returns.
func withRepository(db *bun.DB, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := repository.OpenSession(r.Context(), db)
		if err != nil {
			writeInternalError(w, r, err, "could not open session")
			return
		}
		defer func() {
			if err := session.Close(); err != nil {
				loggerFrom(r).WithError(errors.WithStack(err)).Error("could not close session")
			}
		}()

		ctx := setRepository(r.Context(), repository.NewWrapper(session))
		next(w, r.WithContext(ctx))
	})
}
