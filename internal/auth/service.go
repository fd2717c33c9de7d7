package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gastosapp/gastos-backend/internal/users"
	"github.com/gastosapp/gastos-backend/pkg/auth/session"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "Credenciales inválidas"

// Login failure reasons stay internal. Every one of them surfaces to the
// client as the same generic 401 so the API never confirms whether an email
// has an account.
var (
	errUnknownEmail = errors.New("unknown email")
	errBadPassword  = errors.New("password mismatch")
	errInactiveUser = errors.New("account disabled")
	errNoCredential = errors.New("no password set")
)

// dummyHash keeps password verification running even when the email does not
// resolve to a user, so both paths cost roughly the same.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Validate(ctx context.Context, token string) (*ValidateResponse, error)
}

type service struct {
	users    userRepository
	sessions sessionStore
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type sessionStore interface {
	Create(ctx context.Context, userID uuid.UUID) (*models.Session, error)
	Resolve(ctx context.Context, token string) (*models.Session, error)
	Destroy(ctx context.Context, token string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo     userRepository
	SessionStore sessionStore
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionStore == nil {
		return nil, fmt.Errorf("session store is required")
	}
	return &service{
		users:    params.UserRepo,
		sessions: params.SessionStore,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
	}

	return &LoginResult{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		User:      users.FromModel(user),
	}, nil
}

// Logout destroys the session if one exists. A missing or stale cookie still
// logs out cleanly.
func (s *service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "destroy session")
	}
	return nil
}

// Validate resolves the token into its owning user. Invalid tokens report
// valid=false rather than an error so the gate can branch on the payload.
func (s *service) Validate(ctx context.Context, token string) (*ValidateResponse, error) {
	sess, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return &ValidateResponse{Valid: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve session")
	}
	return &ValidateResponse{Valid: true, User: users.FromModel(&sess.User)}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" || password == "" {
		return nil, loginRejected(errBadPassword)
	}

	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a verification anyway so unknown emails are not faster.
			_, _ = security.VerifyPassword(password, dummyHash)
			return nil, loginRejected(errUnknownEmail)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if user.PasswordHash == "" {
		// Accounts without a stored hash cannot log in with a password.
		// Burn a verification so they are not distinguishable by timing.
		_, _ = security.VerifyPassword(password, dummyHash)
		return nil, loginRejected(errNoCredential)
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, loginRejected(errBadPassword)
	}
	if !user.IsActive {
		return nil, loginRejected(errInactiveUser)
	}
	return user, nil
}

func loginRejected(reason error) error {
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, reason, invalidCredentialsMessage)
}
