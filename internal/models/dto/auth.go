package dto

import "github.com/hongminglow/ledger-be/internal/models"

// RegisterRequest accepts the phone under either "phone" or "phoneNumber".
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,max=50"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required_without=PhoneNumber,max=32"`
	PhoneNumber string `json:"phoneNumber" validate:"required_without=Phone,max=32"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}
