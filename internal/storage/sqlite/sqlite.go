// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// It is selected with storage_driver: sqlite and keeps students across
// restarts. The blank import below registers the sqlite3 driver with
// database/sql; we never call anything from it directly.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aanand-mishra/students-crud/internal/config"
	"github.com/aanand-mishra/students-crud/internal/storage"
	"github.com/aanand-mishra/students-crud/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the file-backed implementation of storage.Storage.
//
// *sql.DB is safe for concurrent use, but check-then-write sequences are
// not atomic across connections, so every write also takes mu.
type SQLite struct {
	Db *sql.DB
	mu sync.Mutex
}

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	dsn := cfg.StoragePath
	if !strings.Contains(dsn, "?") {
		// Wait on a locked database instead of failing with SQLITE_BUSY.
		dsn += "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// AUTOINCREMENT (not plain rowid aliasing) guarantees an id is never
	// handed out again after the row holding it is deleted.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL,
			email TEXT    NOT NULL,
			major TEXT    NOT NULL,
			gpa   REAL    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// IsEmpty reports whether the students table has no rows. main uses it to
// seed a fresh database exactly once.
func (s *SQLite) IsEmpty() (bool, error) {
	var n int
	if err := s.Db.QueryRow("SELECT COUNT(*) FROM students").Scan(&n); err != nil {
		return false, fmt.Errorf("IsEmpty: scan: %w", err)
	}
	return n == 0, nil
}

// CreateStudent checks for a duplicate email and inserts the row inside a
// single transaction.
func (s *SQLite) CreateStudent(st types.Student) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: begin: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRow("SELECT COUNT(*) FROM students WHERE email = ?", st.Email).Scan(&taken)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: check email: %w", err)
	}
	if taken > 0 {
		return types.Student{}, fmt.Errorf("CreateStudent: %q: %w", st.Email, storage.ErrEmailTaken)
	}

	result, err := tx.Exec(
		"INSERT INTO students (name, email, major, gpa) VALUES (?, ?, ?, ?)",
		st.Name, st.Email, st.Major, st.GPA,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: commit: %w", err)
	}

	st.ID = lastID
	return st, nil
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getByID(q rowQuerier, id int64) (types.Student, error) {
	var st types.Student

	// The order of variables in Scan must match the order of columns in SELECT.
	err := q.QueryRow(
		"SELECT id, name, email, major, gpa FROM students WHERE id = ? LIMIT 1", id,
	).Scan(&st.ID, &st.Name, &st.Email, &st.Major, &st.GPA)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return st, nil
}

// GetStudentByID fetches a single student by primary key.
func (s *SQLite) GetStudentByID(id int64) (types.Student, error) {
	return getByID(s.Db, id)
}

// GetStudents returns all rows ordered by id, which is insertion order.
func (s *SQLite) GetStudents() ([]types.Student, error) {
	rows, err := s.Db.Query("SELECT id, name, email, major, gpa FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Returning [] instead of null in JSON is better API behaviour.
	students := make([]types.Student, 0)

	for rows.Next() {
		var st types.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.Major, &st.GPA); err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID replaces a student's data with the provided values.
func (s *SQLite) UpdateStudentByID(id int64, st types.Student) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.Db.Exec(
		"UPDATE students SET name = ?, email = ?, major = ?, gpa = ? WHERE id = ?",
		st.Name, st.Email, st.Major, st.GPA, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: id %d: %w", id, storage.ErrNotFound)
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return getByID(s.Db, id)
}

// PatchStudentByID reads the row, applies the supplied fields and writes it
// back in one transaction.
func (s *SQLite) PatchStudentByID(id int64, p types.StudentPayload) (types.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.Db.Begin()
	if err != nil {
		return types.Student{}, fmt.Errorf("PatchStudentByID: begin: %w", err)
	}
	defer tx.Rollback()

	st, err := getByID(tx, id)
	if err != nil {
		return types.Student{}, err
	}

	p.ApplyTo(&st)

	_, err = tx.Exec(
		"UPDATE students SET name = ?, email = ?, major = ?, gpa = ? WHERE id = ?",
		st.Name, st.Email, st.Major, st.GPA, id,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("PatchStudentByID: exec: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return types.Student{}, fmt.Errorf("PatchStudentByID: commit: %w", err)
	}

	return st, nil
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.Db.Exec("DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("DeleteStudentByID: id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

var _ storage.Storage = (*SQLite)(nil)
