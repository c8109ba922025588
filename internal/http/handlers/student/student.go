// Package student contains all HTTP handlers related to the Student resource.
//
// HANDLER PATTERN USED HERE — THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Go's router expects handler functions with the signature:
//
//	func(http.ResponseWriter, *http.Request)
//
// That signature has no room for extra parameters like a service.
// To inject dependencies we use a factory function that:
//  1. Accepts dependencies (the record service)
//  2. Returns a function with the exact signature the router needs
//
//	router.HandleFunc("POST /records", student.New(svc))
//	//                                 ^^^^^^^^^^^^^^^
//	//                 New(svc) is called ONCE at startup; the returned
//	//                 func is called on EVERY incoming request.
//
// ERROR POLICY:
// ─────────────
// A missing student is a normal outcome and is reported as 404 with a
// fixed message. Every other failure is logged with its cause and
// answered with a fixed, detail-free 500 message.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/records-api/internal/service"
	"github.com/aanand-mishra/records-api/internal/types"
	"github.com/aanand-mishra/records-api/internal/utils/response"
)

// Service is what the handlers need from the record service.
// *service.Service satisfies it.
type Service interface {
	GetAll(ctx context.Context) ([]types.Student, error)
	GetByID(ctx context.Context, id int64) (types.Student, error)
	AddMany(ctx context.Context, students []types.Student) ([]types.Student, error)
	Update(ctx context.Context, id int64, patch types.StudentPatch) (types.Student, error)
	Delete(ctx context.Context, id int64) error
}

// Generic failure messages. The real cause only goes to the log.
var (
	errList   = errors.New("unable to list students")
	errCreate = errors.New("unable to create students")
	errUpdate = errors.New("unable to update student")
	errDelete = errors.New("unable to delete student")
	errLookup = errors.New("unable to get student")

	errEmptyBody = errors.New("request body is empty")
	errInvalidID = errors.New("invalid id: must be an integer")
)

// Register wires every student route onto router under /records.
//
// Route table:
//
//	GET    /records        → list all students
//	GET    /records/{id}   → get one student by ID
//	POST   /records        → bulk-create students
//	PATCH  /records/{id}   → partially update a student
//	DELETE /records/{id}   → delete a student
func Register(router *http.ServeMux, svc Service) {
	router.HandleFunc("GET /records", GetList(svc))
	router.HandleFunc("GET /records/{id}", GetByID(svc))
	router.HandleFunc("POST /records", New(svc))
	router.HandleFunc("PATCH /records/{id}", Update(svc))
	router.HandleFunc("DELETE /records/{id}", Delete(svc))
}

// parseID extracts {id} from the URL. On failure it has already written
// a 400 response and returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		studentErrorBadRequestTotal.Inc()
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errInvalidID))
		return 0, false
	}

	return id, true
}

// decodeBody decodes the JSON body into v. On failure it has already
// written a 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)

	if errors.Is(err, io.EOF) {
		// io.EOF means the body was completely empty — nothing to decode.
		studentErrorBadRequestTotal.Inc()
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errEmptyBody))
		return false
	}

	if err != nil {
		// malformed JSON, wrong types, etc.
		studentErrorBadRequestTotal.Inc()
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	return true
}

// writeNotFound answers 404 for service.ErrNotFound.
func writeNotFound(w http.ResponseWriter) {
	studentErrorNotFoundTotal.Inc()
	response.WriteJSON(w, http.StatusNotFound, response.GeneralError(service.ErrNotFound))
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /records
// Returns a JSON array of all students. Always an array, [] when empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.GetAll(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			studentErrorListTotal.Inc()
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errList))
			return
		}

		if students == nil {
			students = []types.Student{}
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /records/{id}
//
// Success response (200 OK):
//
//	{ "id": 1, "surname": "Ivanov", "name": "Ivan", "patronymic": null,
//	  "age": 20, "averageMark": 4.5 }
//
// Error responses:
//
//	400 Bad Request  — id is not a valid integer
//	404 Not Found    — no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting a student", slog.String("id", r.PathValue("id")))

		id, ok := parseID(w, r)
		if !ok {
			return
		}

		student, err := svc.GetByID(r.Context(), id)
		if errors.Is(err, service.ErrNotFound) {
			writeNotFound(w)
			return
		}
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errLookup))
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /records
// Creates every student in the JSON array body.
//
// Request body (JSON):
//
//	[ { "surname": "Ivanov", "name": "Ivan", "age": 20, "averageMark": 4.5 },
//	  { "surname": "Petrov", "name": "Petr", "age": 22, "averageMark": 4.2 } ]
//
// Success response (201 Created): the same array with ids filled in.
//
// Error responses:
//
//	400 Bad Request  — empty body or malformed JSON
//	500 Internal     — anything the store rejects (fixed message)
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating students")

		var students []types.Student
		if !decodeBody(w, r, &students) {
			return
		}

		created, err := svc.AddMany(r.Context(), students)
		if err != nil {
			slog.Error("error creating students",
				slog.Int("count", len(students)),
				slog.String("error", err.Error()))
			studentErrorCreateTotal.Inc()
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errCreate))
			return
		}

		if created == nil {
			created = []types.Student{}
		}

		studentsCreatedTotal.Add(len(created))
		slog.Info("students created", slog.Int("count", len(created)))

		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PATCH /records/{id}
// Changes only the fields present in the body.
//
// Request body (JSON) — any subset of the fields:
//
//	{ "patronymic": "Petrovich", "age": 21 }
//
// A field that is missing or null keeps its stored value.
//
// Error responses:
//
//	400 Bad Request  — invalid id, empty body or malformed JSON
//	404 Not Found    — no student with that id
//	500 Internal     — the store rejected the merged record (fixed message)
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("updating a student", slog.String("id", r.PathValue("id")))

		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var patch types.StudentPatch
		if !decodeBody(w, r, &patch) {
			return
		}

		updated, err := svc.Update(r.Context(), id, patch)
		if errors.Is(err, service.ErrNotFound) {
			writeNotFound(w)
			return
		}
		if err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			studentErrorUpdateTotal.Inc()
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errUpdate))
			return
		}

		studentsUpdatedTotal.Inc()
		slog.Info("student updated", slog.Int64("id", id))

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /records/{id}
// Permanently removes a student. Deleting an unknown id also answers 204.
//
// Error responses:
//
//	400 Bad Request  — invalid id
//	500 Internal     — database error (fixed message)
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("deleting a student", slog.String("id", r.PathValue("id")))

		id, ok := parseID(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			studentErrorDeleteTotal.Inc()
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errDelete))
			return
		}

		studentsDeletedTotal.Inc()
		slog.Info("student deleted", slog.Int64("id", id))

		response.NoContent(w)
	}
}
