package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	domain "user-auth-service/internal/domain/user"
	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/security"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func setupTestUsecase(t *testing.T) (*Usecase, *MockRepository, *security.BcryptHasher) {
	mockRepo := new(MockRepository)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return New(mockRepo, hasher, zaptest.NewLogger(t)), mockRepo, hasher
}

func assertStatus(t *testing.T, want int, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, pkgerrors.StatusOf(err))
}

// ==================== CREATE USER TESTS ====================

func TestCreateUser_Success(t *testing.T) {
	uc, mockRepo, hasher := setupTestUsecase(t)
	ctx := context.Background()

	req := CreateUserRequest{Name: "John Doe", Email: "john@example.com", Password: "secret123"}

	mockRepo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		ok, _ := hasher.Verify(req.Password, u.PasswordHash)
		return u.Name == req.Name && u.Email == req.Email && u.PasswordHash != req.Password && ok
	})).Return(&domain.User{ID: 1, Name: req.Name, Email: req.Email, PasswordHash: "stored-hash"}, nil)

	resp, err := uc.CreateUser(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Name: "John Doe", Email: "john@example.com"}, resp)
	mockRepo.AssertExpectations(t)
}

func TestCreateUser_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateUserRequest
		wantMsg []string
	}{
		{"Name required", CreateUserRequest{Email: "john@example.com", Password: "secret123"}, []string{"name is required"}},
		{"Email required", CreateUserRequest{Name: "John", Password: "secret123"}, []string{"email is required"}},
		{"Email invalid", CreateUserRequest{Name: "John", Email: "invalid-email", Password: "secret123"}, []string{"email must be a valid email"}},
		{"Password too short", CreateUserRequest{Name: "John", Email: "john@example.com", Password: "12345"}, []string{"password must be at least 6 characters"}},
		{"Password too long", CreateUserRequest{Name: "John", Email: "john@example.com", Password: strings.Repeat("a", 73)}, []string{"password must be at most 72 characters"}},
		{"Multiple errors", CreateUserRequest{Email: "invalid"}, []string{"name is required", "email must be a valid email", "password is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, mockRepo, _ := setupTestUsecase(t)

			resp, err := uc.CreateUser(context.Background(), tt.req)

			assert.Nil(t, resp)
			var ve *pkgerrors.ValidationError
			require.ErrorAs(t, err, &ve)
			messages := make([]string, 0, len(ve.Fields))
			for _, f := range ve.Fields {
				messages = append(messages, f.Message)
			}
			assert.ElementsMatch(t, tt.wantMsg, messages)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateUser_EmailAlreadyExists(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	req := CreateUserRequest{Name: "John Doe", Email: "john@example.com", Password: "secret123"}
	mockRepo.On("GetByEmail", ctx, req.Email).Return(&domain.User{ID: 2, Email: req.Email}, nil)

	resp, err := uc.CreateUser(ctx, req)

	assert.Nil(t, resp)
	assertStatus(t, 409, err)
	assert.EqualError(t, err, "Email already exists")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_PasswordOverByteLimit(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	// 25 runes pass the length rule but encode to 75 bytes
	req := CreateUserRequest{Name: "John", Email: "john@example.com", Password: strings.Repeat("€", 25)}
	mockRepo.On("GetByEmail", ctx, req.Email).Return(nil, nil)

	resp, err := uc.CreateUser(ctx, req)

	assert.Nil(t, resp)
	assertStatus(t, 422, err)
	var ve *pkgerrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Fields[0].Field)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_DuplicateOnInsert(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	req := CreateUserRequest{Name: "John Doe", Email: "john@example.com", Password: "secret123"}
	mockRepo.On("GetByEmail", ctx, req.Email).Return(nil, nil)
	mockRepo.On("Create", ctx, mock.Anything).Return(nil, pkgerrors.NewAlreadyExistsError("user", "Email already exists"))

	_, err := uc.CreateUser(ctx, req)

	assertStatus(t, 409, err)
}

func TestCreateUser_RepositoryFailure(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	req := CreateUserRequest{Name: "John Doe", Email: "john@example.com", Password: "secret123"}
	mockRepo.On("GetByEmail", ctx, req.Email).Return(nil, dbErr)

	_, err := uc.CreateUser(ctx, req)

	assertStatus(t, 500, err)
	assert.ErrorIs(t, err, dbErr)
}

// ==================== UPDATE USER TESTS ====================

func TestUpdateUser_NameOnly(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	existing := &domain.User{ID: 1, Name: "Old Name", Email: "john@example.com", PasswordHash: "old-hash"}
	mockRepo.On("GetByID", ctx, int64(1)).Return(existing, nil)
	mockRepo.On("Update", ctx, &domain.User{ID: 1, Name: "New Name", Email: "john@example.com"}).
		Return(&domain.User{ID: 1, Name: "New Name", Email: "john@example.com", PasswordHash: "old-hash"}, nil)

	resp, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Name: "New Name"})

	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Name: "New Name", Email: "john@example.com"}, resp)
	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_PasswordIsRehashed(t *testing.T) {
	uc, mockRepo, hasher := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com", PasswordHash: "old-hash"}, nil)
	mockRepo.On("Update", ctx, mock.MatchedBy(func(u *domain.User) bool {
		ok, _ := hasher.Verify("newsecret", u.PasswordHash)
		return ok
	})).Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com"}, nil)

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Password: "newsecret"})

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_EmailChange(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com"}, nil)
	mockRepo.On("GetByEmail", ctx, "new@example.com").Return(nil, nil)
	mockRepo.On("Update", ctx, &domain.User{ID: 1, Name: "John", Email: "new@example.com"}).
		Return(&domain.User{ID: 1, Name: "John", Email: "new@example.com"}, nil)

	resp, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Email: "new@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	mockRepo.AssertExpectations(t)
}

func TestUpdateUser_EmailTakenByAnotherUser(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com"}, nil)
	mockRepo.On("GetByEmail", ctx, "jane@example.com").Return(&domain.User{ID: 2, Email: "jane@example.com"}, nil)

	resp, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 1, Email: "jane@example.com"})

	assert.Nil(t, resp)
	assertStatus(t, 409, err)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_NotFound(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(99)).Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

	_, err := uc.UpdateUser(ctx, UpdateUserRequest{ID: 99, Name: "Ghost"})

	assertStatus(t, 404, err)
	assert.EqualError(t, err, "User not found")
}

func TestUpdateUser_ValidationErrors(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)

	_, err := uc.UpdateUser(context.Background(), UpdateUserRequest{ID: 1, Email: "bad", Password: "123"})

	assertStatus(t, 422, err)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// ==================== DELETE / GET / LIST TESTS ====================

func TestDeleteUser_Success(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(nil)

	require.NoError(t, uc.DeleteUser(ctx, 1))
	mockRepo.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(7)).Return(pkgerrors.NewNotFoundError("user", "User not found"))

	assertStatus(t, 404, uc.DeleteUser(ctx, 7))
	assertStatus(t, 404, uc.DeleteUser(ctx, 0))
}

func TestDeleteUser_RepositoryFailure(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("Delete", ctx, int64(1)).Return(errors.New("db down"))

	assertStatus(t, 500, uc.DeleteUser(ctx, 1))
}

func TestGetUser_Success(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(1)).Return(&domain.User{ID: 1, Name: "John", Email: "john@example.com", PasswordHash: "hash"}, nil)

	resp, err := uc.GetUser(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Name: "John", Email: "john@example.com"}, resp)
}

func TestGetUser_NotFound(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(5)).Return(nil, pkgerrors.NewNotFoundError("user", "User not found"))

	_, err := uc.GetUser(ctx, 5)
	assertStatus(t, 404, err)

	_, err = uc.GetUser(ctx, -1)
	assertStatus(t, 404, err)
}

func TestListUsers_Success(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return([]domain.User{
		{ID: 2, Name: "Jane", Email: "jane@example.com"},
		{ID: 1, Name: "John", Email: "john@example.com"},
	}, nil)

	users, err := uc.ListUsers(ctx)

	require.NoError(t, err)
	assert.Equal(t, []User{
		{ID: 2, Name: "Jane", Email: "jane@example.com"},
		{ID: 1, Name: "John", Email: "john@example.com"},
	}, users)
}

func TestListUsers_Empty(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return([]domain.User{}, nil)

	users, err := uc.ListUsers(ctx)

	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestListUsers_RepositoryFailure(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(nil, errors.New("db down"))

	_, err := uc.ListUsers(ctx)
	assertStatus(t, 500, err)
}
