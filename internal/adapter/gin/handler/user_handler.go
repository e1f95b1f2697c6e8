package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/usecase/user"
	"user-auth-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Service
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Every field is optional.
type UpdateUserRequest struct {
	Name     string `json:"name" binding:"omitempty,max=255"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

// ListUsers handles GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	ok(c, http.StatusOK, "Get all users successfully", users)
}

// CreateUser handles POST /admin/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("gin CreateUser request", zap.String("email", req.Email))

	created, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	ok(c, http.StatusCreated, "User created successfully", created)
}

// GetUser handles GET /admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, valid := parseID(c, h.log)
	if !valid {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	ok(c, http.StatusOK, fmt.Sprintf("Get user By ID :%d", id), u)
}

// UpdateUser handles PUT /admin/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, valid := parseID(c, h.log)
	if !valid {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("gin UpdateUser request", zap.Int64("id", id))

	updated, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:       id,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	ok(c, http.StatusOK, "User updated successfully", updated)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, valid := parseID(c, h.log)
	if !valid {
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("gin DeleteUser request", zap.Int64("id", id))

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		handleError(c, h.log, err)
		return
	}

	ok(c, http.StatusOK, "User deleted successfully", nil)
}
