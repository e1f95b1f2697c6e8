package user

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/user"
	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/security"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)   // Insert a new user, returns the stored row
	GetByID(ctx context.Context, id int64) (*domain.User, error)        // NotFoundError when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // nil, nil when absent
	Update(ctx context.Context, u *domain.User) (*domain.User, error)   // Empty PasswordHash keeps the stored hash
	Delete(ctx context.Context, id int64) error                         // NotFoundError when nothing was deleted
	List(ctx context.Context) ([]domain.User, error)                    // All users, newest first
}

// Usecase implements the business logic for user management operations.
type Usecase struct {
	repo     Repository
	hasher   security.PasswordHasher
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new user Usecase.
func New(r Repository, hasher security.PasswordHasher, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, hasher: hasher, log: log, validate: validator.New()}
}

// ToDTO strips the password hash from a domain user.
func ToDTO(u *domain.User) *User {
	return &User{ID: u.ID, Name: u.Name, Email: u.Email}
}

// internalError passes typed errors through and wraps everything else as a 500.
func internalError(msg string, err error) error {
	var statuser pkgerrors.HTTPStatuser
	if errors.As(err, &statuser) {
		return err
	}
	return pkgerrors.NewInternalError(msg, err)
}

// hashFailure passes a rejected password through as a validation error.
func hashFailure(log *zap.Logger, err error) error {
	var ve *pkgerrors.ValidationError
	if errors.As(err, &ve) {
		log.Debug("password rejected by hasher", zap.Error(err))
		return err
	}
	log.Error("failed to hash password", zap.Error(err))
	return internalError("failed to hash password", err)
}

// CreateUser validates the request, rejects a taken email, hashes the password and stores the user.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("creating user", zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, pkgerrors.FromValidator(err)
	}

	existing, err := uc.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, internalError("failed to validate email uniqueness", err)
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, pkgerrors.ErrEmailTaken
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		return nil, hashFailure(log, err)
	}

	created, err := uc.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, internalError("failed to create user", err)
	}

	return ToDTO(created), nil
}

// UpdateUser merges the supplied fields over the stored user.
// The password is re-hashed only when a new one is supplied.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, pkgerrors.FromValidator(err)
	}
	if in.ID <= 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	existing, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		log.Warn("failed to load user for update", zap.Int64("id", in.ID), zap.Error(err))
		return nil, internalError("failed to load user", err)
	}

	merged := domain.User{ID: existing.ID, Name: existing.Name, Email: existing.Email}
	if in.Name != "" {
		merged.Name = in.Name
	}
	if in.Email != "" && in.Email != existing.Email {
		other, err := uc.repo.GetByEmail(ctx, in.Email)
		if err != nil {
			log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
			return nil, internalError("failed to validate email uniqueness", err)
		}
		if other != nil && other.ID != in.ID {
			log.Warn("email already exists", zap.String("email", in.Email), zap.Int64("existing_id", other.ID))
			return nil, pkgerrors.ErrEmailTaken
		}
		merged.Email = in.Email
	}
	if in.Password != "" {
		hash, err := uc.hasher.Hash(in.Password)
		if err != nil {
			return nil, hashFailure(log, err)
		}
		merged.PasswordHash = hash
	}

	updated, err := uc.repo.Update(ctx, &merged)
	if err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, internalError("failed to update user", err)
	}

	return ToDTO(updated), nil
}

// DeleteUser removes a user. Deleting a missing user is a NotFoundError.
func (uc *Usecase) DeleteUser(ctx context.Context, id int64) error {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", id))

	if id <= 0 {
		return pkgerrors.ErrUserNotFound
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		log.Warn("failed to delete user", zap.Int64("id", id), zap.Error(err))
		return internalError("failed to delete user", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, id int64) (*User, error) {
	if id <= 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		logger.WithContext(ctx, uc.log).Warn("failed to get user", zap.Int64("id", id), zap.Error(err))
		return nil, internalError("failed to get user", err)
	}

	return ToDTO(u), nil
}

// ListUsers returns every user, newest first. The result is never nil.
func (uc *Usecase) ListUsers(ctx context.Context) ([]User, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		logger.WithContext(ctx, uc.log).Error("failed to list users", zap.Error(err))
		return nil, internalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i := range domainUsers {
		users[i] = *ToDTO(&domainUsers[i])
	}

	return users, nil
}
