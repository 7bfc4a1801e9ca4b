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

package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomoncle/accountowner/config"
	"github.com/tomoncle/accountowner/controller"
	"github.com/tomoncle/accountowner/repository/repotest"
)

const jeanBody = `{"name":"Jean","dateOfBirth":"1990-01-01","address":"1 Rue de Paris"}`

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	return controller.NewHandler(repotest.NewDB(t), config.Default().HTTP)
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func decode[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(res.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", res.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, res *httptest.ResponseRecorder, want int) {
	t.Helper()
	if res.Code != want {
		t.Fatalf("status = %d, want %d, body %s", res.Code, want, res.Body.String())
	}
}

func createOwner(t *testing.T, h http.Handler, body string) controller.OwnerDto {
	t.Helper()
	res := do(t, h, http.MethodPost, "/api/owner", body)
	expectStatus(t, res, http.StatusCreated)
	return decode[controller.OwnerDto](t, res)
}

func TestOwnerLifecycle(t *testing.T) {
	h := newHandler(t)

	res := do(t, h, http.MethodPost, "/api/owner", jeanBody)
	expectStatus(t, res, http.StatusCreated)
	owner := decode[controller.OwnerDto](t, res)
	if owner.ID == uuid.Nil || owner.Name != "Jean" || owner.Address != "1 Rue de Paris" {
		t.Fatalf("unexpected owner %+v", owner)
	}
	if want := "http://example.com/api/owner/" + owner.ID.String(); res.Header().Get("Location") != want {
		t.Errorf("Location = %q, want %q", res.Header().Get("Location"), want)
	}

	res = do(t, h, http.MethodGet, "/api/owner/"+owner.ID.String(), "")
	expectStatus(t, res, http.StatusOK)
	if !strings.Contains(res.Body.String(), `"dateOfBirth":"1990-01-01"`) {
		t.Errorf("date not rendered as a day: %s", res.Body.String())
	}

	res = do(t, h, http.MethodPut, "/api/owner/"+owner.ID.String(),
		`{"name":"Jean","dateOfBirth":"1990-01-01","address":"2 Avenue Foch"}`)
	expectStatus(t, res, http.StatusNoContent)

	res = do(t, h, http.MethodGet, "/api/owner/"+owner.ID.String(), "")
	expectStatus(t, res, http.StatusOK)
	if got := decode[controller.OwnerDto](t, res); got.Address != "2 Avenue Foch" {
		t.Errorf("address = %q after update", got.Address)
	}

	res = do(t, h, http.MethodDelete, "/api/owner/"+owner.ID.String(), "")
	expectStatus(t, res, http.StatusNoContent)

	res = do(t, h, http.MethodGet, "/api/owner/"+owner.ID.String(), "")
	expectStatus(t, res, http.StatusNotFound)
}

func TestListOwnersSortedByName(t *testing.T) {
	h := newHandler(t)

	res := do(t, h, http.MethodGet, "/api/owner", "")
	expectStatus(t, res, http.StatusOK)
	if strings.TrimSpace(res.Body.String()) != "[]" {
		t.Fatalf("empty list rendered as %s", res.Body.String())
	}

	for _, name := range []string{"Zoé", "Alice", "Martin"} {
		createOwner(t, h, `{"name":"`+name+`","dateOfBirth":"1980-05-17","address":"Lyon"}`)
	}

	res = do(t, h, http.MethodGet, "/api/owner", "")
	expectStatus(t, res, http.StatusOK)
	owners := decode[[]controller.OwnerDto](t, res)
	if len(owners) != 3 || owners[0].Name != "Alice" || owners[2].Name != "Zoé" {
		t.Fatalf("unexpected order: %+v", owners)
	}

	res = do(t, h, http.MethodGet, "/api/owner?page=2&pageSize=2", "")
	expectStatus(t, res, http.StatusOK)
	page := decode[controller.OwnerPageDto](t, res)
	if page.Total != 3 || page.Pages != 2 || len(page.Items) != 1 || page.Items[0].Name != "Zoé" || page.HasNext {
		t.Fatalf("unexpected page: %+v", page)
	}

	res = do(t, h, http.MethodGet, "/api/owner?page=1&pageSize=2", "")
	expectStatus(t, res, http.StatusOK)
	if page := decode[controller.OwnerPageDto](t, res); !page.HasNext || len(page.Items) != 2 {
		t.Fatalf("unexpected first page: %+v", page)
	}
}

func TestCreateOwnerRejectsBadBodies(t *testing.T) {
	h := newHandler(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "owner object is null"},
		{"null", "null", "owner object is null"},
		{"malformed", "{", "invalid model object"},
		{"missing name", `{"dateOfBirth":"1990-01-01","address":"x"}`, "invalid model object"},
		{"missing date", `{"name":"Jean","address":"x"}`, "invalid model object"},
		{"bad date", `{"name":"Jean","dateOfBirth":"01/01/1990","address":"x"}`, "invalid model object"},
		{"name too long", `{"name":"` + strings.Repeat("a", 61) + `","dateOfBirth":"1990-01-01","address":"x"}`, "invalid model object"},
		{"address too long", `{"name":"Jean","dateOfBirth":"1990-01-01","address":"` + strings.Repeat("a", 101) + `"}`, "invalid model object"},
		{"blank name", `{"name":"   ","dateOfBirth":"1990-01-01","address":"x"}`, "invalid model object"},
		{"blank address", `{"name":"Jean","dateOfBirth":"1990-01-01","address":"\t "}`, "invalid model object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, h, http.MethodPost, "/api/owner", tt.body)
			expectStatus(t, res, http.StatusBadRequest)
			body := decode[map[string]any](t, res)
			if body["error"] != tt.want {
				t.Errorf("error = %v, want %q", body["error"], tt.want)
			}
		})
	}

	res := do(t, h, http.MethodGet, "/api/owner", "")
	if owners := decode[[]controller.OwnerDto](t, res); len(owners) != 0 {
		t.Fatalf("rejected bodies created owners: %+v", owners)
	}
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	h := newHandler(t)
	res := do(t, h, http.MethodPost, "/api/owner", `{"address":"x"}`)
	expectStatus(t, res, http.StatusBadRequest)
	if !strings.Contains(res.Body.String(), "name is required") || !strings.Contains(res.Body.String(), "dateOfBirth is required") {
		t.Fatalf("unexpected details: %s", res.Body.String())
	}

	res = do(t, h, http.MethodPost, "/api/owner", `{"name":" ","dateOfBirth":"1990-01-01","address":"x"}`)
	expectStatus(t, res, http.StatusBadRequest)
	if !strings.Contains(res.Body.String(), "name must not be blank") {
		t.Fatalf("unexpected details: %s", res.Body.String())
	}
}

func TestInvalidAndUnknownIDs(t *testing.T) {
	h := newHandler(t)
	unknown := uuid.NewString()

	tests := []struct {
		method string
		target string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/owner/not-a-uuid", "", http.StatusBadRequest},
		{http.MethodDelete, "/api/owner/42", "", http.StatusBadRequest},
		{http.MethodGet, "/api/account/nope", "", http.StatusBadRequest},
		{http.MethodGet, "/api/owner/" + unknown, "", http.StatusNotFound},
		{http.MethodGet, "/api/owner/" + unknown + "/account", "", http.StatusNotFound},
		{http.MethodPut, "/api/owner/" + unknown, jeanBody, http.StatusNotFound},
		{http.MethodDelete, "/api/owner/" + unknown, "", http.StatusNotFound},
		{http.MethodGet, "/api/account/" + unknown, "", http.StatusNotFound},
		{http.MethodDelete, "/api/account/" + unknown, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			expectStatus(t, do(t, h, tt.method, tt.target, tt.body), tt.want)
		})
	}
}

func TestDeleteOwnerWithAccounts(t *testing.T) {
	h := newHandler(t)
	owner := createOwner(t, h, jeanBody)

	res := do(t, h, http.MethodPost, "/api/account",
		`{"dateCreated":"2024-01-15","accountType":"Domestic","ownerId":"`+owner.ID.String()+`"}`,
		"X-Forwarded-Proto", "https", "X-Forwarded-Host", "bank.example.org")
	expectStatus(t, res, http.StatusCreated)
	account := decode[controller.AccountDto](t, res)
	if want := "https://bank.example.org/api/account/" + account.ID.String(); res.Header().Get("Location") != want {
		t.Errorf("Location = %q, want %q", res.Header().Get("Location"), want)
	}

	res = do(t, h, http.MethodDelete, "/api/owner/"+owner.ID.String(), "")
	expectStatus(t, res, http.StatusBadRequest)
	if !strings.Contains(res.Body.String(), "related accounts") {
		t.Errorf("unexpected body %s", res.Body.String())
	}

	res = do(t, h, http.MethodGet, "/api/owner/"+owner.ID.String()+"/account", "")
	expectStatus(t, res, http.StatusOK)
	details := decode[controller.OwnerDto](t, res)
	if len(details.Accounts) != 1 || details.Accounts[0].ID != account.ID || details.Accounts[0].OwnerID != owner.ID {
		t.Fatalf("unexpected accounts: %+v", details.Accounts)
	}

	expectStatus(t, do(t, h, http.MethodDelete, "/api/account/"+account.ID.String(), ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodDelete, "/api/owner/"+owner.ID.String(), ""), http.StatusNoContent)
}

func TestAccountEndpoints(t *testing.T) {
	h := newHandler(t)
	owner := createOwner(t, h, jeanBody)

	res := do(t, h, http.MethodPost, "/api/account",
		`{"dateCreated":"2024-01-15","accountType":"Domestic","ownerId":"`+uuid.NewString()+`"}`)
	expectStatus(t, res, http.StatusBadRequest)

	res = do(t, h, http.MethodPost, "/api/account", `{"accountType":"Domestic"}`)
	expectStatus(t, res, http.StatusBadRequest)

	res = do(t, h, http.MethodPost, "/api/account",
		`{"dateCreated":"2024-01-15","accountType":"   ","ownerId":"`+owner.ID.String()+`"}`)
	expectStatus(t, res, http.StatusBadRequest)
	if !strings.Contains(res.Body.String(), "accountType must not be blank") {
		t.Errorf("unexpected details: %s", res.Body.String())
	}

	res = do(t, h, http.MethodPost, "/api/account", "")
	expectStatus(t, res, http.StatusBadRequest)
	if body := decode[map[string]any](t, res); body["error"] != "account object is null" {
		t.Errorf("error = %v", body["error"])
	}

	account := decode[controller.AccountDto](t, func() *httptest.ResponseRecorder {
		res := do(t, h, http.MethodPost, "/api/account",
			`{"dateCreated":"2024-01-15","accountType":"Savings","ownerId":"`+owner.ID.String()+`"}`)
		expectStatus(t, res, http.StatusCreated)
		return res
	}())

	res = do(t, h, http.MethodPut, "/api/account/"+account.ID.String(),
		`{"dateCreated":"2024-01-15","accountType":"Foreign","ownerId":"`+uuid.NewString()+`"}`)
	expectStatus(t, res, http.StatusBadRequest)

	res = do(t, h, http.MethodPut, "/api/account/"+account.ID.String(),
		`{"dateCreated":"2024-01-15","accountType":"Foreign","ownerId":"`+owner.ID.String()+`"}`)
	expectStatus(t, res, http.StatusNoContent)

	res = do(t, h, http.MethodGet, "/api/account/"+account.ID.String(), "")
	expectStatus(t, res, http.StatusOK)
	if got := decode[controller.AccountDto](t, res); got.AccountType != "Foreign" {
		t.Errorf("account type = %q after update", got.AccountType)
	}

	res = do(t, h, http.MethodGet, "/api/account", "")
	expectStatus(t, res, http.StatusOK)
	if accounts := decode[[]controller.AccountDto](t, res); len(accounts) != 1 {
		t.Fatalf("accounts = %+v", accounts)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHandler(t)

	res := do(t, h, http.MethodGet, "/healthz", "")
	expectStatus(t, res, http.StatusOK)
	if status := decode[map[string]any](t, res); status["healthy"] != true {
		t.Errorf("health = %v", status)
	}

	do(t, h, http.MethodGet, "/api/owner", "")
	res = do(t, h, http.MethodGet, "/metrics", "")
	expectStatus(t, res, http.StatusOK)
	if !strings.Contains(res.Body.String(), "accountowner_http_requests_total") {
		t.Error("request counter not exported")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newHandler(t)
	res := do(t, h, http.MethodOptions, "/api/owner", "",
		"Origin", "https://app.example.org",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "Content-Type")
	if got := res.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
	if res.Code >= 300 {
		t.Fatalf("preflight status = %d", res.Code)
	}
}
