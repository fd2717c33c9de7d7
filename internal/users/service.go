package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/security"
	"github.com/google/uuid"
)

// Service defines the user management behavior needed by the controllers.
type Service interface {
	List(ctx context.Context, actorID uuid.UUID, actorIsAdmin bool) ([]*UserDTO, error)
	Get(ctx context.Context, actorID uuid.UUID, actorIsAdmin bool, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
}

type service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountOtherAdmins(ctx context.Context, excludeID uuid.UUID) (int64, error)
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo        userRepository
	PasswordCfg config.PasswordConfig
}

// NewService constructs a user management service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: params.Repo, passwordCfg: params.PasswordCfg}, nil
}

// List returns all users for admins and only the caller for everyone else.
func (s *service) List(ctx context.Context, actorID uuid.UUID, actorIsAdmin bool) ([]*UserDTO, error) {
	if !actorIsAdmin {
		user, err := s.repo.FindByID(ctx, actorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
		}
		return []*UserDTO{FromModel(user)}, nil
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(users), nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, actorIsAdmin bool, id uuid.UUID) (*UserDTO, error) {
	if !actorIsAdmin && actorID != id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "forbidden")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	isAdmin := false
	if req.IsAdmin != nil {
		isAdmin = *req.IsAdmin
	}
	user, err := s.repo.Create(ctx, CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         req.Name,
		IsAdmin:      isAdmin,
		IsActive:     req.IsActive,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	fields := map[string]any{}
	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		fields["password_hash"] = hash
	}
	if req.IsAdmin != nil {
		fields["is_admin"] = *req.IsAdmin
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	demoting := req.IsAdmin != nil && !*req.IsAdmin
	deactivating := req.IsActive != nil && !*req.IsActive
	if target.IsAdmin && target.IsActive && (demoting || deactivating) {
		if err := s.requireOtherAdmin(ctx, id, "cannot remove the last admin"); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	if target.IsAdmin && target.IsActive {
		if err := s.requireOtherAdmin(ctx, id, "cannot delete the last admin"); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) requireOtherAdmin(ctx context.Context, excludeID uuid.UUID, msg string) error {
	count, err := s.repo.CountOtherAdmins(ctx, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count admins")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, msg)
	}
	return nil
}
