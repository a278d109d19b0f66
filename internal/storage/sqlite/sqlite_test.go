package sqlite

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-crud/internal/config"
	"github.com/aanand-mishra/students-crud/internal/storage"
	"github.com/aanand-mishra/students-crud/internal/types"
)

func openTemp(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.db")
	s, err := New(&config.Config{StoragePath: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func seeded(t *testing.T) *SQLite {
	t.Helper()
	s, _ := openTemp(t)
	require.NoError(t, storage.Seed(s, storage.SeedStudents()))
	return s
}

func TestNew_EmptyDatabase(t *testing.T) {
	s, _ := openTemp(t)

	empty, err := s.IsEmpty()
	require.NoError(t, err)
	assert.True(t, empty)

	all, err := s.GetStudents()
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestCreateAndGet(t *testing.T) {
	s := seeded(t)

	created, err := s.CreateStudent(types.Student{Name: "Zara", Email: "zara@uni.edu", Major: "CS", GPA: 3.7})
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)

	got, err := s.GetStudentByID(6)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	all, err := s.GetStudents()
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, int64(1), all[0].ID)
	assert.Equal(t, "Computer Science", all[3].Major)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	s := seeded(t)

	_, err := s.CreateStudent(types.Student{Name: "Eve Two", Email: "eve@uni.edu", Major: "Art", GPA: 1.0})
	require.ErrorIs(t, err, storage.ErrEmailTaken)

	all, err := s.GetStudents()
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestGet_NotFound(t *testing.T) {
	s := seeded(t)

	_, err := s.GetStudentByID(404)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	s := seeded(t)
	replacement := types.Student{Name: "Bobby", Email: "bobby@uni.edu", Major: "Music", GPA: 2.9}

	updated, err := s.UpdateStudentByID(2, replacement)
	require.NoError(t, err)
	replacement.ID = 2
	assert.Equal(t, replacement, updated)

	// same values again still counts as a match
	again, err := s.UpdateStudentByID(2, replacement)
	require.NoError(t, err)
	assert.Equal(t, updated, again)

	_, err = s.UpdateStudentByID(99, replacement)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPatch(t *testing.T) {
	s := seeded(t)
	major := "Applied Physics"

	patched, err := s.PatchStudentByID(3, types.StudentPayload{Major: &major})
	require.NoError(t, err)
	assert.Equal(t, types.Student{ID: 3, Name: "Carol White", Email: "carol@uni.edu", Major: "Applied Physics", GPA: 3.2}, patched)

	got, err := s.GetStudentByID(3)
	require.NoError(t, err)
	assert.Equal(t, patched, got)

	_, err = s.PatchStudentByID(99, types.StudentPayload{Major: &major})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete_IDsNeverReused(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.DeleteStudentByID(5))
	assert.ErrorIs(t, s.DeleteStudentByID(5), storage.ErrNotFound)

	created, err := s.CreateStudent(types.Student{Name: "Fay", Email: "fay@uni.edu", Major: "Art", GPA: 3.0})
	require.NoError(t, err)
	assert.Equal(t, int64(6), created.ID)
}

func TestReopenKeepsData(t *testing.T) {
	s, path := openTemp(t)
	require.NoError(t, storage.Seed(s, storage.SeedStudents()))
	require.NoError(t, s.Close())

	reopened, err := New(&config.Config{StoragePath: path})
	require.NoError(t, err)
	defer reopened.Close()

	empty, err := reopened.IsEmpty()
	require.NoError(t, err)
	assert.False(t, empty)

	got, err := reopened.GetStudentByID(4)
	require.NoError(t, err)
	assert.Equal(t, "David Brown", got.Name)
}

func TestCreateStudent_ConcurrentDuplicates(t *testing.T) {
	s, _ := openTemp(t)
	const workers = 32

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		other   []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.CreateStudent(types.Student{
				Name:  fmt.Sprintf("Student %d", i),
				Email: "same@uni.edu",
				Major: "CS",
				GPA:   3.0,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case !errors.Is(err, storage.ErrEmailTaken):
				other = append(other, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 1, success)

	all, err := s.GetStudents()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
