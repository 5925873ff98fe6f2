package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rsinghdev/storekhata-backend/pkg/db/models"
	"github.com/rsinghdev/storekhata-backend/pkg/enums"
	pkgerrors "github.com/rsinghdev/storekhata-backend/pkg/errors"
)

// Service defines operations on the account registry.
type Service interface {
	Create(ctx context.Context, input CreateAccountInput) (*models.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	List(ctx context.Context, kind string) ([]models.Account, error)
}

// CreateAccountInput captures the data a new account requires.
type CreateAccountInput struct {
	Name  string `json:"name" validate:"required,min=1,max=120"`
	Kind  string `json:"kind" validate:"required"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type service struct {
	repo Repository
}

// NewService wires an account service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("account repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateAccountInput) (*models.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account name required")
	}
	kind, err := enums.ParseAccountKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account kind")
	}

	account := &models.Account{
		ID:    uuid.New(),
		Name:  name,
		Kind:  kind,
		Phone: strings.TrimSpace(input.Phone),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, err
	}
	return account, nil
}

func (s *service) List(ctx context.Context, kind string) ([]models.Account, error) {
	var parsed enums.AccountKind
	if kind != "" {
		var err error
		parsed, err = enums.ParseAccountKind(kind)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account kind")
		}
	}
	return s.repo.List(ctx, parsed)
}
