// Package student contains all HTTP handlers related to the Student resource.
//
// Every handler is built by a factory that receives its dependencies and
// returns an http.HandlerFunc closing over them:
//
//	router.HandleFunc("POST /api/v1/students", student.New(storage))
//
// New(storage) runs once at startup; the returned func runs per request.
// Handlers resolve validation and existence problems themselves and turn
// them into 400/404/409 immediately. Anything unexpected from the store
// becomes a 500.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aanand-mishra/students-crud/internal/query"
	"github.com/aanand-mishra/students-crud/internal/storage"
	"github.com/aanand-mishra/students-crud/internal/types"
	"github.com/aanand-mishra/students-crud/internal/utils/response"
	"github.com/aanand-mishra/students-crud/internal/validation"
)

// CollectionPath is where the student resource is mounted.
const CollectionPath = "/api/v1/students"

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/v1/students
// Creates a new student from the JSON request body. Not idempotent: every
// successful call creates a distinct record with a fresh id.
//
// Request body (JSON), all fields required:
//
//	{ "name": "Zara", "email": "zara@uni.edu", "major": "CS", "gpa": 3.7 }
//
// Success response (201 Created), with Location: /api/v1/students/6
//
//	{ "id": 6, "name": "Zara", "email": "zara@uni.edu", "major": "CS", "gpa": 3.7 }
//
// Error responses:
//
//	400 Bad Request  malformed JSON or failed validation
//	409 Conflict     email already used by another student
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		payload, ok := decodePayload(w, r)
		if !ok {
			return
		}

		if problems := validation.Validate(payload, true); len(problems) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(problems))
			return
		}

		created, err := storage.CreateStudent(payload.Student())
		if err != nil {
			writeCreateError(w, *payload.Email, err)
			return
		}

		slog.Info("student created", slog.Int64("id", created.ID))

		w.Header().Set("Location", fmt.Sprintf("%s/%d", CollectionPath, created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/v1/students/{id}
//
// Success response (200 OK): the student.
//
// Error responses:
//
//	400 Bad Request  id is not a valid integer
//	404 Not Found    no student with that id
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := storage.GetStudentByID(id)
		if err != nil {
			writeStoreError(w, id, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/v1/students
//
// Query parameters (all optional):
//
//	major, name   case-insensitive substring filters
//	sort          "gpa" (highest first) or "name" (A to Z)
//	page, limit   1-based page number and page size
//
// Success response (200 OK):
//
//	{ "total": 2, "page": 1, "limit": 2, "data": [ ... ] }
//
// An empty result is still 200 with "data": [].
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing students", slog.String("query", r.URL.RawQuery))

		students, err := storage.GetStudents()
		if err != nil {
			writeStoreError(w, 0, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, query.Apply(students, query.FromValues(r.URL.Query())))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/v1/students/{id}
// Replaces ALL fields of an existing student; the id never changes.
// Idempotent: repeating the same request leaves the same state.
//
// Error responses:
//
//	400 Bad Request  invalid id, malformed JSON or failed validation
//	404 Not Found    no student with that id (checked before validation)
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		if _, err := storage.GetStudentByID(id); err != nil {
			writeStoreError(w, id, err)
			return
		}

		payload, ok := decodePayload(w, r)
		if !ok {
			return
		}

		if problems := validation.Validate(payload, true); len(problems) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(problems))
			return
		}

		updated, err := storage.UpdateStudentByID(id, payload.Student())
		if err != nil {
			writeStoreError(w, id, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /api/v1/students/{id}
// Overwrites only the fields present in the body. An empty body or {} is
// valid and returns the record unchanged.
//
// Error responses:
//
//	400 Bad Request  invalid id, malformed JSON or a supplied field is invalid
//	404 Not Found    no student with that id (checked before validation)
//
// ─────────────────────────────────────────────────────────────────────────────
func Patch(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("patching a student", slog.Int64("id", id))

		current, err := storage.GetStudentByID(id)
		if err != nil {
			writeStoreError(w, id, err)
			return
		}

		payload, ok := decodePayload(w, r)
		if !ok {
			return
		}

		if problems := validation.Validate(payload, false); len(problems) > 0 {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(problems))
			return
		}

		if payload.IsEmpty() {
			response.WriteJSON(w, http.StatusOK, current)
			return
		}

		patched, err := storage.PatchStudentByID(id, payload)
		if err != nil {
			writeStoreError(w, id, err)
			return
		}

		slog.Info("student patched", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, patched)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/v1/students/{id}
// Removes the student; its id is never handed out again.
//
// Success response: 204 No Content, empty body.
// A second DELETE of the same id is 404, which is the expected outcome of
// repeating an idempotent request, not a failure.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := storage.DeleteStudentByID(id); err != nil {
			writeStoreError(w, id, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}

// parseID reads the {id} path segment. On failure it has already written
// the 400 response.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralErrorf("Invalid id '%s': must be an integer", raw))
		return 0, false
	}
	return id, true
}

// decodePayload reads the JSON body. An empty body decodes to an empty
// payload; validation then decides whether that is acceptable. Anything after
// the first JSON value makes the body malformed. On malformed JSON it has
// already written the 400 response.
func decodePayload(w http.ResponseWriter, r *http.Request) (types.StudentPayload, bool) {
	var payload types.StudentPayload

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(&payload)
	if err == nil {
		if extra := dec.Decode(&json.RawMessage{}); !errors.Is(extra, io.EOF) {
			err = errors.New("unexpected data after JSON body")
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.Response{
			Error:   "Invalid JSON body",
			Details: []string{err.Error()},
		})
		return types.StudentPayload{}, false
	}

	return payload, true
}

// writeStoreError maps storage sentinel errors to status codes.
func writeStoreError(w http.ResponseWriter, id int64, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound,
			response.GeneralErrorf("Student with id %d not found", id))
	default:
		slog.Error("storage error", slog.Int64("id", id), slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.InternalError(err))
	}
}

// writeCreateError is writeStoreError plus the 409 for a duplicate email.
func writeCreateError(w http.ResponseWriter, email string, err error) {
	if errors.Is(err, storage.ErrEmailTaken) {
		response.WriteJSON(w, http.StatusConflict,
			response.GeneralErrorf("Email '%s' already in use", email))
		return
	}
	writeStoreError(w, 0, err)
}
