// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// WHY AN INTERFACE?
// ─────────────────
// The service layer should not know or care which database it is
// talking to. By depending only on this interface:
//
//   - Switching databases = implement the interface for the new DB,
//     change one line in main.go. Zero service changes.
//
//   - Writing tests = pass a fake/mock that satisfies the interface.
//     No real database needed for unit tests.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/records-api/internal/types"
)

// ErrNotFound is returned when an update targets a row that does not exist.
var ErrNotFound = errors.New("record not found")

// Repository is a generic keyed-record store.
//
// T is the record type and ID its primary-key type. The method set is
// deliberately small: there are no query methods beyond lookup by key.
type Repository[T any, ID comparable] interface {
	// FindAll returns every record in primary-key order.
	// Returns an empty slice (not nil) if there are none.
	FindAll(ctx context.Context) ([]T, error)

	// FindByID returns the record and true, or the zero value and false
	// when no record has that key. A lookup miss is not an error.
	FindByID(ctx context.Context, id ID) (T, bool, error)

	// Save inserts the record when its key is unset and updates it
	// otherwise. The stored record (with its key) is returned.
	// Updating a key that does not exist returns ErrNotFound.
	Save(ctx context.Context, record T) (T, error)

	// SaveAll saves every record atomically: either all of them are
	// stored or none are. The result preserves input order.
	SaveAll(ctx context.Context, records []T) ([]T, error)

	// DeleteByID removes the record permanently. Deleting a key that
	// does not exist is a no-op.
	DeleteByID(ctx context.Context, id ID) error

	// ExistsByID reports whether a record with that key is stored.
	ExistsByID(ctx context.Context, id ID) (bool, error)
}

// Storage is the database contract for student records.
type Storage interface {
	Repository[types.Student, int64]

	// Close releases the underlying connection pool.
	Close() error
}
