package auth

import (
	"github.com/linkcart/b2b-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and resolved authorization scope
// produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Email        string         `json:"email"`
	Role         enums.UserRole `json:"role"`
	CompanyID    string         `json:"company_id,omitempty"`
	StoreIDs     []string       `json:"store_ids,omitempty"`
}
