package postgres

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-auth-service/internal/domain/user"
	pkgerrors "user-auth-service/pkg/errors"
)

// UserRepoPG implements the user Repository using GORM.
// The same code runs against PostgreSQL in production and SQLite in tests.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`  // Unique identifier with auto-increment
	Name     string `gorm:"not null"`                  // User's full name (required)
	Email    string `gorm:"not null;uniqueIndex"`      // User's unique email address (required, unique)
	Password string `gorm:"column:password;not null"` // bcrypt hash of the password
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// AutoMigrate creates or updates the users table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func toDomain(m UserSchema) *user.User {
	return &user.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.Password,
	}
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("duplicate email on insert", zap.String("email", u.Email))
			return nil, pkgerrors.ErrEmailTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return toDomain(model), nil
}

// Update writes name and email, and the password hash when it is set.
// An empty PasswordHash leaves the stored hash untouched.
func (r *UserRepoPG) Update(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	changes := map[string]any{
		"name":  u.Name,
		"email": u.Email,
	}
	if u.PasswordHash != "" {
		changes["password"] = u.PasswordHash
	}

	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Updates(changes)
	if err := res.Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("duplicate email on update", zap.Int64("id", u.ID), zap.String("email", u.Email))
			return nil, pkgerrors.ErrEmailTaken
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.Int64("id", u.ID))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found on update", zap.Int64("id", u.ID))
		return nil, pkgerrors.ErrUserNotFound
	}

	r.log.Info("user updated in db", zap.Int64("id", u.ID))
	return r.GetByID(ctx, u.ID)
}

// Delete removes a user from the database by ID.
// Zero affected rows means the user did not exist.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid user id")
	}

	res := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if err := res.Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.RowsAffected == 0 {
		r.log.Warn("user not found on delete", zap.Int64("id", id))
		return pkgerrors.ErrUserNotFound
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.Int64("id", id))
			return nil, pkgerrors.ErrUserNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toDomain(model), nil
}

// GetByEmail retrieves a user by email address.
// It returns nil, nil when no user has that email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return toDomain(model), nil
}

// List returns every user ordered by id descending.
// Only id, name and email are selected; PasswordHash is always empty.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Select("id", "name", "email").Order("id desc").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = user.User{
			ID:    model.ID,
			Name:  model.Name,
			Email: model.Email,
		}
	}

	return users, nil
}

// Ping checks that the database answers.
func (r *UserRepoPG) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
