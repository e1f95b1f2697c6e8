package user

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name     string `validate:"required,max=255"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
}

// UpdateUserRequest represents a partial update. Empty fields keep their stored value.
type UpdateUserRequest struct {
	ID       int64
	Name     string `validate:"omitempty,max=255"`
	Email    string `validate:"omitempty,email"`
	Password string `validate:"omitempty,min=6,max=72"`
}

// User is the client-facing view of a user. It has no password field.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
