package domain

import (
	"errors"
	"time"
)

// Address is the postal address block kept on a user profile.
type Address struct {
	CEP     string
	Street  string
	City    string
	State   string
	Country string
}

// User represents a registered profile. The ID is the authentication
// subject identifier and doubles as the document key, so listings ordered
// by ID have a stable total order for cursor pagination.
//
// Friends is symmetric: if A lists B, B lists A. Both sides are written in
// one transaction; an asymmetric state is never observably persisted.
type User struct {
	ID                  string
	Name                string
	Phone               string
	PhotoURL            string
	Address             Address
	Friends             []string
	Favorites           []string // professional IDs
	ProfessionalProfile bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewUser creates a user profile instance with empty relationship sets.
func NewUser(id, name, phone string, address Address) (*User, error) {
	if id == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if name == "" {
		return nil, errors.New("name cannot be empty")
	}
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Name:      name,
		Phone:     phone,
		Address:   address,
		Friends:   []string{},
		Favorites: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UserProfileUpdate carries the mutable profile fields for a merge update.
// Nil pointers leave the stored value untouched.
type UserProfileUpdate struct {
	Name                *string
	Phone               *string
	Address             *Address
	ProfessionalProfile *bool
}
