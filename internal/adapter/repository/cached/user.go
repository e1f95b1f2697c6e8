package cached

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-auth-service/internal/adapter/cache"
	domain "user-auth-service/internal/domain/user"
	"user-auth-service/internal/usecase/user"
)

const loadTimeout = 5 * time.Second

// UserRepository implements user.Repository with a read-through cache on GetByID.
// Writes go to the database first and then evict the cached entry.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository wraps dbRepo with cache. A nil cache disables caching.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

var _ user.Repository = (*UserRepository)(nil)

// Create delegates to the DB repository. New rows are not cached until first read.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID returns the cached user when present, otherwise loads it once per id
// across concurrent callers and populates the cache.
// Users served from the cache have an empty PasswordHash.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	result, err, shared := r.group.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// The load is shared by every waiter, so one caller's cancellation must not fail the rest.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		if u := r.fromCache(loadCtx, id); u != nil {
			return u, nil
		}

		u, err := r.dbRepo.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(loadCtx, u); err != nil {
				r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := result.(*domain.User)
	if shared {
		// Callers must not share one mutable value.
		cp := *u
		return &cp, nil
	}
	return u, nil
}

func (r *UserRepository) fromCache(ctx context.Context, id int64) *domain.User {
	if r.cache == nil {
		return nil
	}
	u, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		return nil
	}
	return u
}

// GetByEmail always reads the database; login needs the stored hash.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update writes through to the database and evicts the cached entry.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	updated, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, u.ID, "update")
	return updated, nil
}

// Delete removes the row and evicts the cached entry.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id, "delete")
	return nil
}

func (r *UserRepository) evict(ctx context.Context, id int64, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
	}
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// Ping reports database health when the wrapped repository supports it.
func (r *UserRepository) Ping(ctx context.Context) error {
	if p, ok := r.dbRepo.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
