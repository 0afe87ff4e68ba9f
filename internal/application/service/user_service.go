package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ibrhamsworld/erp-api/internal/domain/entity"
	"github.com/ibrhamsworld/erp-api/internal/domain/enum"
	"github.com/ibrhamsworld/erp-api/internal/domain/repository"
	infraRepo "github.com/ibrhamsworld/erp-api/internal/infrastructure/repository"
	"github.com/ibrhamsworld/erp-api/pkg/apperror"
	"github.com/ibrhamsworld/erp-api/pkg/pagination"
)

var validate = validator.New()

// UserService manages staff records shown as sales reps on receipts
type UserService struct {
	userRepo   repository.UserRepository
	branchRepo repository.BranchRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository, branchRepo repository.BranchRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
	}
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	Name     string
	Email    string
	Role     string
	BranchID *uuid.UUID
}

// CreateUser adds a staff member
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "email", Message: "Email must be a valid email address"})
	}
	role := enum.UserRoleSalesRep
	if input.Role != "" {
		parsed, err := enum.ParseUserRole(input.Role)
		if err != nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "role", Message: "Role must be one of ADMIN, MANAGER, SALES_REP"})
		}
		role = parsed
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	var branch *entity.Branch
	var err error
	if input.BranchID != nil {
		branch, err = s.branchRepo.GetByID(ctx, *input.BranchID)
	} else {
		branch, err = s.branchRepo.GetByName(ctx, entity.DefaultBranchName)
	}
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, apperror.NewNotFoundError("Branch")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("A user with this email already exists")
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Role:     role,
		BranchID: branch.ID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if infraRepo.IsDuplicateKey(err) {
			return nil, apperror.NewConflictError("A user with this email already exists")
		}
		return nil, err
	}
	user.Branch = branch
	return user, nil
}

// ListUsers lists staff with pagination
func (s *UserService) ListUsers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.User], error) {
	users, total, err := s.userRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}
