package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

// copyStudent detaches the stored courses table from the returned student.
func copyStudent(st *student.Student) student.Student {
	cp := *st
	cp.Details.Courses = append(make([]course.Record, 0, len(st.Details.Courses)), st.Details.Courses...)
	return cp
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if st.Email != "" {
		for _, other := range repo.db.table {
			if other.Email == st.Email {
				return student.Student{}, student.ErrEmailExists
			}
		}
	}

	st.ID = uuid.New().String()
	stored := copyStudent(&st)
	repo.db.table[st.ID] = &stored
	return copyStudent(&stored), nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.table[id]; ok {
		return copyStudent(st), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) QueryStudents(_ context.Context, ordering ...core.DBOrdering) ([]student.Student, error) {
	repo.db.RLock()
	students := make([]student.Student, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		students = append(students, copyStudent(st))
	}
	repo.db.RUnlock()

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: student.OrderByCreatedAt, Ascending: true}}
	}
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(students[i], students[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func compare(a, b student.Student, field string) int {
	switch field {
	case student.OrderByName:
		return strings.Compare(a.Name, b.Name)
	case student.OrderByEmail:
		return strings.Compare(a.Email, b.Email)
	case student.OrderByCreatedAt:
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}

func (repo *studentRepository) UpdateDetails(_ context.Context, id string, fn func(student.Details) (student.Details, error)) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	st, ok := repo.db.table[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	details, err := fn(copyStudent(st).Details)
	if err != nil {
		return student.Student{}, err
	}

	updated := *st
	updated.Details = details
	updated.UpdatedAt = time.Now().UTC()
	stored := copyStudent(&updated)
	repo.db.table[id] = &stored
	return copyStudent(&stored), nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
