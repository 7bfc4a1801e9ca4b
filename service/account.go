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

	"github.com/tomoncle/accountowner/database"
	"github.com/tomoncle/accountowner/entity"
	"github.com/tomoncle/accountowner/repository"
	"github.com/tomoncle/accountowner/utils"
)

// AccountFields are the caller supplied values of an account.
type AccountFields struct {
	DateCreated time.Time
	AccountType string
	OwnerID     uuid.UUID
}

func (f AccountFields) apply(a *entity.Account) {
	a.DateCreated = f.DateCreated
	a.AccountType = f.AccountType
	a.OwnerID = f.OwnerID
}

type AccountService struct {
	repo   *repository.Wrapper
	logger *utils.Logger
}

func NewAccountService(repo *repository.Wrapper) *AccountService {
	return &AccountService{repo: repo, logger: utils.NewLogger("SERVICE")}
}

func (s *AccountService) GetAllAccounts(ctx context.Context) ([]*entity.Account, error) {
	accounts, err := s.repo.Account().GetAllAccounts(ctx)
	if err != nil {
		s.logger.WithError(err).Error("could not list accounts")
		return nil, err
	}
	s.logger.WithField("count", len(accounts)).Info("returned all accounts")
	return accounts, nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	log := s.logger.WithField("account_id", id)
	account, err := s.repo.Account().GetAccountByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("could not load account")
		return nil, err
	}
	if account == nil {
		log.Error("account not found")
		return nil, errors.WithStack(ErrAccountNotFound)
	}
	log.Info("returned account")
	return account, nil
}

// CreateAccount stores a new account for an existing owner. The owner row
// is locked while the account is written so it cannot be deleted in between.
func (s *AccountService) CreateAccount(ctx context.Context, fields AccountFields) (*entity.Account, error) {
	account := &entity.Account{}
	fields.apply(account)

	err := s.repo.Atomic(ctx, func(ctx context.Context, w *repository.Wrapper) error {
		if err := s.ensureOwner(ctx, w, fields.OwnerID); err != nil {
			return err
		}
		w.Account().CreateAccount(account)
		return w.Save(ctx)
	})
	if err != nil {
		err = s.translate(err)
		s.logger.WithField("owner_id", fields.OwnerID).WithError(err).Error("could not create account")
		return nil, err
	}
	s.logger.WithField("account_id", account.ID).WithField("owner_id", account.OwnerID).Info("account created")
	return account, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, fields AccountFields) error {
	log := s.logger.WithField("account_id", id)

	err := s.repo.Atomic(ctx, func(ctx context.Context, w *repository.Wrapper) error {
		account, err := w.Account().GetAccountByID(ctx, id)
		if err != nil {
			return err
		}
		if account == nil {
			return errors.WithStack(ErrAccountNotFound)
		}
		if err := s.ensureOwner(ctx, w, fields.OwnerID); err != nil {
			return err
		}
		fields.apply(account)
		w.Account().UpdateAccount(account)
		return w.Save(ctx)
	})
	if err != nil {
		err = s.translate(err)
		log.WithError(err).Error("could not update account")
		return err
	}
	log.Info("account updated")
	return nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	log := s.logger.WithField("account_id", id)

	account, err := s.repo.Account().GetAccountByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("could not load account")
		return err
	}
	if account == nil {
		log.Error("account not found")
		return errors.WithStack(ErrAccountNotFound)
	}

	s.repo.Account().DeleteAccount(account)
	if err := s.repo.Save(ctx); err != nil {
		log.WithError(err).Error("could not delete account")
		return err
	}
	log.Info("account deleted")
	return nil
}

func (s *AccountService) ensureOwner(ctx context.Context, w *repository.Wrapper, ownerID uuid.UUID) error {
	owner, err := w.Owner().GetOwnerForUpdate(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return errors.WithStack(ErrUnknownOwner)
	}
	return nil
}

// translate maps a rejected foreign key to ErrUnknownOwner.
func (s *AccountService) translate(err error) error {
	if database.IsForeignKeyViolation(err) {
		return errors.Wrap(ErrUnknownOwner, err.Error())
	}
	return err
}
