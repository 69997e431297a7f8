// Package repository persists activity reports, status reports and users.
//
// Two backends implement the same contracts: GORM (postgres, sqlite) and
// MongoDB. Writes are validated here, so every stored record satisfies its
// model's Validate rules regardless of which transport produced it.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"cctv-surveillance-reports/be/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record exists for the given key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError lists every invalid field of a rejected write.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Record is implemented by pointers to the persisted report kinds.
type Record interface {
	GetID() string
	GetCreatedAt() time.Time
	Assign(id string, createdAt time.Time)
	Validate() []string
}

// Reports is the persistence contract shared by both report kinds.
// List and ListByLocation return records newest first.
type Reports[T any] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context) ([]T, error)
	ListByLocation(ctx context.Context, location string) ([]T, error)
	Update(ctx context.Context, id string, rec *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// Users stores operator accounts.
type Users interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	List(ctx context.Context) ([]models.User, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Activities Reports[models.ActivityReport]
	Statuses   Reports[models.StatusReport]
	Users      Users
	Close      func(ctx context.Context) error
}

func validate(rec Record) error {
	if msgs := rec.Validate(); len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// clock and ids are swapped out in tests.
type stamper struct {
	now   func() time.Time
	newID func() string
}

func defaultStamper() stamper {
	return stamper{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}
