// Package memory provides the default, in-process implementation of
// storage.Storage. State lives for the lifetime of the process and is
// discarded on exit.
package memory

import (
	"fmt"
	"sync"

	"github.com/aanand-mishra/students-crud/internal/storage"
	"github.com/aanand-mishra/students-crud/internal/types"
)

// Store holds the ordered list of students plus the next-id counter.
//
// All reads take the read lock; every read-modify-write sequence (the
// duplicate check plus insert in CreateStudent, find plus overwrite in the
// update methods) runs under the write lock.
type Store struct {
	mu       sync.RWMutex
	students []types.Student
	nextID   int64
}

// New returns an empty Store whose first id will be 1.
func New() *Store {
	return &Store{
		students: make([]types.Student, 0),
		nextID:   1,
	}
}

// indexOf does a linear scan by id. Callers must hold the lock.
func (s *Store) indexOf(id int64) int {
	for i := range s.students {
		if s.students[i].ID == id {
			return i
		}
	}
	return -1
}

// CreateStudent assigns the next id and appends st, unless its email is taken.
func (s *Store) CreateStudent(st types.Student) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.students {
		if existing.Email == st.Email {
			return types.Student{}, fmt.Errorf("CreateStudent: %q: %w", st.Email, storage.ErrEmailTaken)
		}
	}

	st.ID = s.nextID
	s.nextID++
	s.students = append(s.students, st)

	return st, nil
}

// GetStudentByID returns the student with id or storage.ErrNotFound.
func (s *Store) GetStudentByID(id int64) (types.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("GetStudentByID: id %d: %w", id, storage.ErrNotFound)
	}
	return s.students[i], nil
}

// GetStudents returns a copy so callers can sort and slice it freely.
func (s *Store) GetStudents() ([]types.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Student, len(s.students))
	copy(out, s.students)
	return out, nil
}

// UpdateStudentByID replaces every field except the id.
func (s *Store) UpdateStudentByID(id int64, st types.Student) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: id %d: %w", id, storage.ErrNotFound)
	}

	st.ID = id
	s.students[i] = st
	return st, nil
}

// PatchStudentByID overwrites only the fields present in p.
func (s *Store) PatchStudentByID(id int64, p types.StudentPayload) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("PatchStudentByID: id %d: %w", id, storage.ErrNotFound)
	}

	p.ApplyTo(&s.students[i])
	return s.students[i], nil
}

// DeleteStudentByID removes the student. Its id is never reused.
func (s *Store) DeleteStudentByID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("DeleteStudentByID: id %d: %w", id, storage.ErrNotFound)
	}

	s.students = append(s.students[:i], s.students[i+1:]...)
	return nil
}

var _ storage.Storage = (*Store)(nil)
