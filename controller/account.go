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
	"net/http"

	"github.com/pkg/errors"

	"github.com/tomoncle/accountowner/service"
)

func accountService(r *http.Request) *service.AccountService {
	return service.NewAccountService(Repository(r.Context()))
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := accountService(r).GetAllAccounts(r.Context())
	if err != nil {
		writeInternalError(w, r, err, "could not list accounts")
		return
	}
	writeJSON(w, r, http.StatusOK, toAccountDtos(accounts))
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	account, err := accountService(r).GetAccountByID(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, r, http.StatusNotFound, msgAcctNotFound)
	case err != nil:
		writeInternalError(w, r, err, "could not get account")
	default:
		writeJSON(w, r, http.StatusOK, toAccountDto(account))
	}
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var dto AccountForCreationDto
	if !h.bind(w, r, &dto, msgAccountNull) {
		return
	}

	account, err := accountService(r).CreateAccount(r.Context(), dto.fields())
	switch {
	case errors.Is(err, service.ErrUnknownOwner):
		writeError(w, r, http.StatusBadRequest, msgUnknownOwner)
	case err != nil:
		writeInternalError(w, r, err, "could not create account")
	default:
		w.Header().Set("Location", h.location(r, "account", account.ID))
		writeJSON(w, r, http.StatusCreated, toAccountDto(account))
	}
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	var dto AccountForUpdateDto
	if !h.bind(w, r, &dto, msgAccountNull) {
		return
	}

	err := accountService(r).UpdateAccount(r.Context(), id, (*AccountForCreationDto)(&dto).fields())
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, r, http.StatusNotFound, msgAcctNotFound)
	case errors.Is(err, service.ErrUnknownOwner):
		writeError(w, r, http.StatusBadRequest, msgUnknownOwner)
	case err != nil:
		writeInternalError(w, r, err, "could not update account")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	err := accountService(r).DeleteAccount(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, r, http.StatusNotFound, msgAcctNotFound)
	case err != nil:
		writeInternalError(w, r, err, "could not delete account")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
