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

// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "accountowner"

const (
	LabelResult  = "result"
	LabelOutcome = "outcome"
	LabelMethod  = "method"
	LabelRoute   = "route"
	LabelCode    = "code"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var RepositorySaves = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "repository_saves_total",
		Help:      "Unit of work commits by result",
		Namespace: Namespace,
	},
	[]string{LabelResult},
)

var OwnerDeletions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "owner_deletions_total",
		Help:      "Owner deletion attempts by outcome",
		Namespace: Namespace,
	},
	[]string{LabelOutcome},
)

var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "http_requests_total",
		Help:      "Handled HTTP requests",
		Namespace: Namespace,
	},
	[]string{LabelMethod, LabelRoute, LabelCode},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelMethod, LabelRoute},
)

// Handler serves the default registry in the exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
