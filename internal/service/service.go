// Package service holds the business rules for student records.
//
// The HTTP layer talks to a *Service; the Service talks to
// storage.Storage. Nothing here knows about HTTP status codes or SQL.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/types"
)

// ErrNotFound is returned when no student has the requested id.
var ErrNotFound = errors.New("student not found")

// Service implements lookup-or-fail, partial update, bulk insert and
// delete on top of a storage.Storage.
type Service struct {
	storage storage.Storage
}

// New returns a Service backed by the given storage. The storage is
// owned by the caller; the Service never closes it.
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// GetAll returns every student.
func (s *Service) GetAll(ctx context.Context) ([]types.Student, error) {
	slog.Debug("getting all students")

	return s.storage.FindAll(ctx)
}

// GetByID returns the student with the given id or ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id int64) (types.Student, error) {
	student, ok, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetByID: %w", err)
	}
	if !ok {
		slog.Warn("student not found", slog.Int64("id", id))
		return types.Student{}, ErrNotFound
	}

	return student, nil
}

// AddMany inserts all students and returns them with their new ids, in
// the same order as given. Ids sent by the client are discarded: a bulk
// insert must never turn into an update of an existing row.
func (s *Service) AddMany(ctx context.Context, students []types.Student) ([]types.Student, error) {
	slog.Debug("adding students", slog.Int("count", len(students)))

	fresh := make([]types.Student, len(students))
	for i, student := range students {
		student.ID = 0
		fresh[i] = student
	}

	return s.storage.SaveAll(ctx, fresh)
}

// Update merges the set fields of patch into the stored student and
// persists the result. Fields absent from the patch keep their value.
func (s *Service) Update(ctx context.Context, id int64, patch types.StudentPatch) (types.Student, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return types.Student{}, err
	}

	merged := patch.ApplyTo(existing)

	saved, err := s.storage.Save(ctx, merged)
	// The row can vanish between the lookup and the save.
	if errors.Is(err, storage.ErrNotFound) {
		return types.Student{}, ErrNotFound
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("Update: %w", err)
	}

	return saved, nil
}

// Delete removes the student with the given id. There is no existence
// check: deleting an unknown id succeeds without doing anything.
func (s *Service) Delete(ctx context.Context, id int64) error {
	slog.Debug("deleting student", slog.Int64("id", id))

	return s.storage.DeleteByID(ctx, id)
}
