// Package transport defines the auth API request and response shapes.
package transport

import "github.com/google/uuid"

// RegisterCustomerRequest is the sign-up payload for customers.
type RegisterCustomerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"required"`
	Address  string `json:"address" validate:"required,max=300"`
	Pincode  string `json:"pincode" validate:"required,len=6,numeric"`
}

// RegisterProfessionalRequest is the sign-up payload for professionals.
type RegisterProfessionalRequest struct {
	Email           string    `json:"email" validate:"required,email"`
	Password        string    `json:"password" validate:"required,min=8,max=72"`
	FullName        string    `json:"fullName" validate:"required,min=2,max=100"`
	Phone           string    `json:"phone" validate:"required"`
	ServiceID       uuid.UUID `json:"serviceId" validate:"required"`
	ExperienceYears int       `json:"experienceYears" validate:"gte=0,lte=60"`
}

// LoginRequest is the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"fullName"`
	Phone    string    `json:"phone"`
	Role     string    `json:"role"`
	Active   bool      `json:"active"`
}
