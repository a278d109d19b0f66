package storage

import (
	"fmt"

	"github.com/aanand-mishra/students-crud/internal/types"
)

// SeedStudents returns the records loaded into an empty store at startup.
// Inserted in this order they receive ids 1 to 5.
func SeedStudents() []types.Student {
	return []types.Student{
		{Name: "Alice Johnson", Email: "alice@uni.edu", Major: "Computer Science", GPA: 3.8},
		{Name: "Bob Smith", Email: "bob@uni.edu", Major: "Mathematics", GPA: 3.5},
		{Name: "Carol White", Email: "carol@uni.edu", Major: "Physics", GPA: 3.2},
		{Name: "David Brown", Email: "david@uni.edu", Major: "Computer Science", GPA: 3.9},
		{Name: "Eve Davis", Email: "eve@uni.edu", Major: "Biology", GPA: 3.6},
	}
}

// Seed inserts students into s in order. It stops at the first error.
func Seed(s Storage, students []types.Student) error {
	for _, st := range students {
		if _, err := s.CreateStudent(st); err != nil {
			return fmt.Errorf("Seed: create %q: %w", st.Email, err)
		}
	}
	return nil
}
