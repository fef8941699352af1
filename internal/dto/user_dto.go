package dto

import "strings"

type LocationInput struct {
	Lat     *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Address string   `json:"address" validate:"omitempty,max=255"`
}

type UpdateMeRequest struct {
	Name            *string        `json:"name" validate:"omitempty,min=1,max=100"`
	Email           *string        `json:"email" validate:"omitempty,email,max=255"`
	Location        *LocationInput `json:"location"`
	Password        string         `json:"password"`
	PasswordConfirm string         `json:"passwordConfirm"`
}

func (r *UpdateMeRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		*r.Email = NormalizeEmail(*r.Email)
	}
}

// HasPassword reports whether the body tries to change the password.
func (r *UpdateMeRequest) HasPassword() bool {
	return r.Password != "" || r.PasswordConfirm != ""
}

type UpdateUserRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email  *string `json:"email" validate:"omitempty,email,max=255"`
	Role   *string `json:"role" validate:"omitempty,oneof=user admin"`
	Active *bool   `json:"active"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.Name != nil {
		*r.Name = strings.TrimSpace(*r.Name)
	}
	if r.Email != nil {
		*r.Email = NormalizeEmail(*r.Email)
	}
}
