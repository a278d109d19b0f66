// Package storage defines the Storage interface, a contract that any
// backend must satisfy to work with this application.
//
// Handlers (HTTP layer) should not know or care which backend they are
// talking to. Two implementations exist: storage/memory (the default,
// process-lifetime state) and storage/sqlite (file-backed). Switching is a
// config change; handlers are untouched.
package storage

import (
	"errors"

	"github.com/aanand-mishra/students-crud/internal/types"
)

// Sentinel errors returned by every implementation. Handlers map them to
// HTTP status codes with errors.Is.
var (
	// ErrNotFound means no student has the requested id.
	ErrNotFound = errors.New("student not found")

	// ErrEmailTaken means a create would duplicate an existing email.
	ErrEmailTaken = errors.New("email already in use")
)

// Storage is the record store contract.
//
// Implementations must be safe for concurrent use. In particular the
// duplicate-email check and the insert in CreateStudent must happen as one
// step, otherwise two concurrent creates could both pass the check.
type Storage interface {
	// CreateStudent assigns the next id to s, stores it and returns the
	// stored record. Ids are never reused, even after a delete.
	// Returns ErrEmailTaken without mutating the store on a duplicate email.
	CreateStudent(s types.Student) (types.Student, error)

	// GetStudentByID fetches a single student. Returns ErrNotFound if absent.
	GetStudentByID(id int64) (types.Student, error)

	// GetStudents returns every student in insertion order.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces every field except the id.
	// Returns the updated record, or ErrNotFound.
	UpdateStudentByID(id int64, s types.Student) (types.Student, error)

	// PatchStudentByID overwrites only the fields present in p.
	// Returns the updated record, or ErrNotFound.
	PatchStudentByID(id int64, p types.StudentPayload) (types.Student, error)

	// DeleteStudentByID removes a student. Returns ErrNotFound if absent.
	DeleteStudentByID(id int64) error
}
