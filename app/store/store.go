// Package store contains entities of the application and the storage of bot users.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for store
type Interface interface {
	Put(ctx context.Context, u User) error
	Get(ctx context.Context, chatID string) (User, error)
	List(ctx context.Context, req ListRequest) ([]User, error)
	Delete(ctx context.Context, chatID string) error
}

// ListRequest defines parameters for listing users from store.
type ListRequest struct {
	// OnlyAuthorized filters out users that haven't provided the token yet.
	OnlyAuthorized bool
}

// User is a chat that talks to the bot.
type User struct {
	ChatID       string    `json:"chat_id"`
	Username     string    `json:"username"`
	Authorized   bool      `json:"authorized"`
	RegisteredAt time.Time `json:"registered_at"`
}
