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
	"github.com/tomoncle/accountowner/types"
)

type OwnerPageDto struct {
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
	Total    int         `json:"total"`
	Pages    int         `json:"pages"`
	HasNext  bool        `json:"hasNext"`
	Items    []*OwnerDto `json:"items"`
}

func ownerService(r *http.Request) *service.OwnerService {
	return service.NewOwnerService(Repository(r.Context()))
}

// handleListOwners returns every owner sorted by name, or one page of them
// when the page query parameter is set.
func (h *Handler) handleListOwners(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Has("page") {
		req := types.NewDefaultPageRequest(getQueryInt(query, "page", 1), getQueryInt(query, "pageSize", types.DefaultPageSize))
		page, err := ownerService(r).PageOwners(r.Context(), req)
		if err != nil {
			writeInternalError(w, r, err, "could not page owners")
			return
		}
		writeJSON(w, r, http.StatusOK, &OwnerPageDto{
			Page:     page.Page,
			PageSize: page.PageSize,
			Total:    page.Total,
			Pages:    page.Pages(),
			HasNext:  page.HasNext(),
			Items:    toOwnerDtos(page.Items),
		})
		return
	}

	owners, err := ownerService(r).GetAllOwners(r.Context())
	if err != nil {
		writeInternalError(w, r, err, "could not list owners")
		return
	}
	writeJSON(w, r, http.StatusOK, toOwnerDtos(owners))
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	owner, err := ownerService(r).GetOwnerByID(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrOwnerNotFound):
		writeError(w, r, http.StatusNotFound, msgOwnerNotFound)
	case err != nil:
		writeInternalError(w, r, err, "could not get owner")
	default:
		writeJSON(w, r, http.StatusOK, toOwnerDto(owner, false))
	}
}

func (h *Handler) handleGetOwnerWithDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	owner, err := ownerService(r).GetOwnerWithDetails(r.Context(), id)
	switch {
	case errors.Is(err, service.ErrOwnerNotFound):
		writeError(w, r, http.StatusNotFound, msgOwnerNotFound)
	case err != nil:
		writeInternalError(w, r, err, "could not get owner with accounts")
	default:
		writeJSON(w, r, http.StatusOK, toOwnerDto(owner, true))
	}
}

func (h *Handler) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	var dto OwnerForCreationDto
	if !h.bind(w, r, &dto, msgOwnerNull) {
		return
	}

	owner, err := ownerService(r).CreateOwner(r.Context(), dto.fields())
	if err != nil {
		writeInternalError(w, r, err, "could not create owner")
		return
	}

	w.Header().Set("Location", h.location(r, "owner", owner.ID))
	writeJSON(w, r, http.StatusCreated, toOwnerDto(owner, false))
}

func (h *Handler) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	var dto OwnerForUpdateDto
	if !h.bind(w, r, &dto, msgOwnerNull) {
		return
	}

	err := ownerService(r).UpdateOwner(r.Context(), id, (*OwnerForCreationDto)(&dto).fields())
	switch {
	case errors.Is(err, service.ErrOwnerNotFound):
		writeError(w, r, http.StatusNotFound, msgOwnerNotFound)
	case err != nil:
		writeInternalError(w, r, err, "could not update owner")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) handleDeleteOwner(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	outcome, err := ownerService(r).DeleteOwner(r.Context(), id)
	if err != nil {
		writeInternalError(w, r, err, "could not delete owner")
		return
	}

	switch outcome {
	case service.DeleteOutcomeDeleted:
		w.WriteHeader(http.StatusNoContent)
	case service.DeleteOutcomeNotFound:
		writeError(w, r, http.StatusNotFound, msgOwnerNotFound)
	case service.DeleteOutcomeHasAccounts:
		writeError(w, r, http.StatusBadRequest, outcome.Desc())
	default:
		writeInternalError(w, r, errors.Errorf("unexpected outcome %d", outcome.Number()), "could not delete owner")
	}
}
