package models

import "time"

// User represents a registered applicant profile.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DateOfBirth  time.Time `json:"dob"`
	Place        string    `json:"place,omitempty"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`          // Never expose this to the client
	ProfilePic   string    `json:"profilePic"` // filename only, empty when not uploaded
	Resume       string    `json:"resume"`     // filename only, empty when not uploaded
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
