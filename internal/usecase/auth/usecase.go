// Package auth implements registration and password login.
package auth

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/user"
	"user-auth-service/internal/usecase/user"
	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/security"
)

// UserCreator creates users with the same rules as the admin API.
type UserCreator interface {
	CreateUser(ctx context.Context, in user.CreateUserRequest) (*user.User, error)
}

// CredentialStore looks up a user with the stored password hash.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64) (string, time.Time, error)
}

// RegisterRequest is the self-service sign-up payload.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, in RegisterRequest) (*user.User, error)
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
}

// Usecase implements Service.
type Usecase struct {
	users    UserCreator
	store    CredentialStore
	hasher   security.PasswordHasher
	tokens   TokenIssuer
	log      *zap.Logger
	validate *validator.Validate
}

var _ Service = (*Usecase)(nil)

// New creates an auth Usecase.
func New(users UserCreator, store CredentialStore, hasher security.PasswordHasher, tokens TokenIssuer, log *zap.Logger) *Usecase {
	return &Usecase{
		users:    users,
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		validate: validator.New(),
	}
}

// Register creates a new account. Validation, hashing and the duplicate check
// are the user use case's.
func (uc *Usecase) Register(ctx context.Context, in RegisterRequest) (*user.User, error) {
	logger.WithContext(ctx, uc.log).Info("registering user", zap.String("email", in.Email))

	return uc.users.CreateUser(ctx, user.CreateUserRequest{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
}

// Login checks credentials and issues an access token.
// Unknown email and wrong password return the same error after the same bcrypt work.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, pkgerrors.FromValidator(err)
	}

	u, err := uc.store.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to load user for login", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to load user", err)
	}
	if u == nil {
		uc.hasher.VerifyDummy(in.Password)
		log.Info("login failed", zap.String("reason", "unknown email"))
		return nil, pkgerrors.ErrInvalidCredentials
	}

	ok, err := uc.hasher.Verify(in.Password, u.PasswordHash)
	if err != nil {
		log.Error("failed to verify password", zap.Int64("id", u.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to verify password", err)
	}
	if !ok {
		log.Info("login failed", zap.String("reason", "wrong password"), zap.Int64("id", u.ID))
		return nil, pkgerrors.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.tokens.Issue(u.ID)
	if err != nil {
		log.Error("failed to issue token", zap.Int64("id", u.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to issue token", err)
	}

	log.Info("login succeeded", zap.Int64("id", u.ID))
	return &LoginResponse{
		User:      *user.ToDTO(u),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
