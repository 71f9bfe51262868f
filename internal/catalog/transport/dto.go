// Package transport defines the catalog API request and response shapes.
package transport

// CreateServiceRequest is the admin payload for adding a service.
type CreateServiceRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Description     string `json:"description" validate:"max=1000"`
	PriceCents      int64  `json:"priceCents" validate:"required,gt=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,gt=0,lte=540"`
}

// UpdateServiceRequest is the admin payload for editing a service.
type UpdateServiceRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Description     string `json:"description" validate:"max=1000"`
	PriceCents      int64  `json:"priceCents" validate:"required,gt=0"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,gt=0,lte=540"`
}
