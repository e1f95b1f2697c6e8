package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/usecase/auth"
	"user-auth-service/pkg/logger"
)

// AuthHandler serves the public register and login endpoints.
type AuthHandler struct {
	uc  auth.Service
	log *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(uc auth.Service, log *zap.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, log: log}
}

// RegisterRequest represents the HTTP request body for POST /register
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest represents the HTTP request body for POST /login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	created, err := h.uc.Register(c.Request.Context(), auth.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	ok(c, http.StatusCreated, "Register successfully", created)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, h.log, &req) {
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	logger.WithContext(c.Request.Context(), h.log).Info("user logged in", zap.Int64("id", resp.User.ID))
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "Login successfully",
		Data:    resp.User,
		Token:   resp.Token,
	})
}
