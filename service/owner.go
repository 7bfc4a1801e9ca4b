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

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/metrics"
	"github.com/tomoncle/accountowner/repository"
	"github.com/tomoncle/accountowner/types"
	"github.com/tomoncle/accountowner/utils"
)

// OwnerFields are the caller supplied values of an owner.
type OwnerFields struct {
	Name        string
	DateOfBirth time.Time
	Address     string
}

func (f OwnerFields) apply(o *entity.Owner) {
	o.Name = f.Name
	o.DateOfBirth = f.DateOfBirth
	o.Address = f.Address
}

// OwnerService implements the owner use cases on top of one request's
// repository wrapper.
type OwnerService struct {
	repo   *repository.Wrapper
	logger *utils.Logger
}

func NewOwnerService(repo *repository.Wrapper) *OwnerService {
	return &OwnerService{repo: repo, logger: utils.NewLogger("SERVICE")}
}

func (s *OwnerService) GetAllOwners(ctx context.Context) ([]*entity.Owner, error) {
	owners, err := s.repo.Owner().GetAllOwners(ctx)
	if err != nil {
		s.logger.WithError(err).Error("could not list owners")
		return nil, err
	}
	s.logger.WithField("count", len(owners)).Info("returned all owners")
	return owners, nil
}

func (s *OwnerService) PageOwners(ctx context.Context, page *types.PageRequest) (*types.Pagination[entity.Owner], error) {
	result, err := s.repo.Owner().PageOwners(ctx, page)
	if err != nil {
		s.logger.WithError(err).Error("could not page owners")
		return nil, err
	}
	return result, nil
}

func (s *OwnerService) GetOwnerByID(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	return s.get(ctx, id, false)
}

// GetOwnerWithDetails returns the owner with its accounts.
func (s *OwnerService) GetOwnerWithDetails(ctx context.Context, id uuid.UUID) (*entity.Owner, error) {
	return s.get(ctx, id, true)
}

func (s *OwnerService) get(ctx context.Context, id uuid.UUID, details bool) (*entity.Owner, error) {
	log := s.logger.WithField("owner_id", id)

	var owner *entity.Owner
	var err error
	if details {
		owner, err = s.repo.Owner().GetOwnerWithDetails(ctx, id)
	} else {
		owner, err = s.repo.Owner().GetOwnerByID(ctx, id)
	}
	if err != nil {
		log.WithError(err).Error("could not load owner")
		return nil, err
	}
	if owner == nil {
		log.Error("owner not found")
		return nil, errors.WithStack(ErrOwnerNotFound)
	}
	log.Info("returned owner")
	return owner, nil
}

func (s *OwnerService) CreateOwner(ctx context.Context, fields OwnerFields) (*entity.Owner, error) {
	owner := &entity.Owner{}
	fields.apply(owner)

	s.repo.Owner().CreateOwner(owner)
	if err := s.repo.Save(ctx); err != nil {
		s.logger.WithError(err).Error("could not create owner")
		return nil, err
	}
	s.logger.WithField("owner_id", owner.ID).Info("owner created")
	return owner, nil
}

func (s *OwnerService) UpdateOwner(ctx context.Context, id uuid.UUID, fields OwnerFields) error {
	log := s.logger.WithField("owner_id", id)

	owner, err := s.repo.Owner().GetOwnerByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("could not load owner")
		return err
	}
	if owner == nil {
		log.Error("owner not found")
		return errors.WithStack(ErrOwnerNotFound)
	}

	fields.apply(owner)
	s.repo.Owner().UpdateOwner(owner)
	if err := s.repo.Save(ctx); err != nil {
		log.WithError(err).Error("could not update owner")
		return err
	}
	log.Info("owner updated")
	return nil
}

// DeleteOwner removes the owner unless accounts still reference it. The
// lookup, the account check and the delete share one transaction, and the
// owner row is locked where the dialect allows, so an account created
// concurrently for the same owner waits for the outcome.
func (s *OwnerService) DeleteOwner(ctx context.Context, id uuid.UUID) (DeleteOutcome, error) {
	log := s.logger.WithField("owner_id", id)

	outcome := DeleteOutcomeNotFound
	err := s.repo.Atomic(ctx, func(ctx context.Context, w *repository.Wrapper) error {
		owner, err := w.Owner().GetOwnerForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if owner == nil {
			outcome = DeleteOutcomeNotFound
			return nil
		}

		accounts, err := w.Account().AccountsByOwner(ctx, id)
		if err != nil {
			return err
		}
		if len(accounts) > 0 {
			outcome = DeleteOutcomeHasAccounts
			return nil
		}

		w.Owner().DeleteOwner(owner)
		if err := w.Save(ctx); err != nil {
			return err
		}
		outcome = DeleteOutcomeDeleted
		return nil
	})
	if err != nil {
		metrics.OwnerDeletions.WithLabelValues(metrics.ResultFailure).Inc()
		log.WithError(err).Error("could not delete owner")
		return outcome, err
	}

	metrics.OwnerDeletions.WithLabelValues(outcome.Name()).Inc()
	entry := log.WithField("outcome", outcome.Name())
	if outcome == DeleteOutcomeDeleted {
		entry.Info("owner deleted")
	} else {
		entry.Error(outcome.Desc())
	}
	return outcome, nil
}
