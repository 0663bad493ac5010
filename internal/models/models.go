package models

import (
	"time"
)

// User is a stored account. PasswordHash never leaves the server.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// PublicUser is the part of a User that clients may see.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

type Task struct {
	ID          string    `json:"_id"`
	OwnerID     string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskPatch holds the fields of an update; nil means "leave unchanged".
type TaskPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Completed   *bool     `json:"completed"`
	UpdatedAt   time.Time `json:"-"`
}

// Apply copies the present fields of p onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	t.UpdatedAt = p.UpdatedAt
}
