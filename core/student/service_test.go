package student

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

type repoMock struct {
	mu       sync.Mutex
	students map[string]Student
}

func (r *repoMock) CreateStudent(_ context.Context, st Student) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.students {
		if st.Email != "" && other.Email == st.Email {
			return Student{}, ErrEmailExists
		}
	}
	st.ID = strconv.Itoa(len(r.students) + 1)
	r.students[st.ID] = st
	return st, nil
}

func (r *repoMock) GetStudent(_ context.Context, id string) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return st, nil
}

func (r *repoMock) QueryStudents(context.Context, ...core.DBOrdering) ([]Student, error) {
	return nil, nil
}

func (r *repoMock) UpdateDetails(_ context.Context, id string, fn func(Details) (Details, error)) (Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	details, err := fn(st.Details)
	if err != nil {
		return Student{}, err
	}
	st.Details = details
	r.students[id] = st
	return st, nil
}

func (r *repoMock) DeleteStudent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.students, id)
	return nil
}

var translator = core.NewTranslator()

func setup(t *testing.T) (*Service, Student) {
	t.Helper()
	validate := validator.New()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	InitValidators(validate, translator)

	svc := NewService(&repoMock{students: make(map[string]Student)}, validate)
	st, err := svc.Create(context.Background(), NewStudent{Name: "  ישראל ישראלי ", Email: "Israel@Campus.Technion.ac.il"})
	require.NoError(t, err)
	return svc, st
}

func TestService_Create(t *testing.T) {
	svc, st := setup(t)
	assert.Equal(t, "ישראל ישראלי", st.Name)
	assert.Equal(t, "israel@campus.technion.ac.il", st.Email)
	assert.NotNil(t, st.Details.Courses)
	assert.False(t, st.CreatedAt.IsZero())

	tests := []struct {
		name      string
		ns        NewStudent
		wantField string
	}{
		{name: "blank name", ns: NewStudent{Name: "   "}, wantField: "name"},
		{name: "invalid email", ns: NewStudent{Name: "a", Email: "lol"}, wantField: "email"},
		{name: "email taken", ns: NewStudent{Name: "a", Email: "israel@campus.technion.ac.il"}, wantField: "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.ns)
			require.Error(t, err)
			switch e := err.(type) {
			case validator.ValidationErrors:
				assert.Equal(t, tt.wantField, e[0].Field())
			case *core.ValidationError:
				assert.Equal(t, tt.wantField, e.Fields[0].Field)
			default:
				t.Errorf("Create() unexpected error = %v", err)
			}
		})
	}
}

func TestService_Dispatch(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	var (
		calls   int
		actions []Action
	)
	unsubscribe := svc.Subscribe(func(got Student, action Action) {
		calls++
		actions = append(actions, action)
		assert.Equal(t, st.ID, got.ID)
	})

	add := AddCourse{course.Record{Name: "פיזיקה 1", CourseNumber: "114071", Credit: "3.5", Grade: "88", Semester: winter1}}
	updated, err := svc.Dispatch(ctx, st.ID, add)
	require.NoError(t, err)
	require.Len(t, updated.Details.Courses, 1)
	assert.Equal(t, course.StateCompleted, updated.Details.Courses[0].State)
	assert.True(t, updated.Details.Modified)
	assert.Equal(t, 1, calls)

	// rejected: listeners are not notified
	_, err = svc.Dispatch(ctx, st.ID, add)
	assertRejected(t, err, course.FieldCourseNumber, course.ErrDuplicateCourse)
	assert.Equal(t, 1, calls)

	_, err = svc.Dispatch(ctx, "lol", add)
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, 1, calls)

	edit := EditCourse{Semester: winter1, CourseNumber: "114071", Updates: []course.FieldUpdate{course.SetGrade{Grade: course.GradeFail}}}
	updated, err = svc.Dispatch(ctx, st.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, course.StateNotCompleted, updated.Details.Courses[0].State)
	assert.Equal(t, []Action{add, edit}, actions)

	unsubscribe()
	unsubscribe()
	_, err = svc.Dispatch(ctx, st.ID, DeleteCourse{Semester: winter1, CourseNumber: "114071"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	stored, err := svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Details.Courses)
}

func TestService_Dispatch_ReplaceDetails(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	_, err := svc.Dispatch(ctx, st.ID, ReplaceDetails{Details{Courses: []course.Record{
		{CourseNumber: "104031", Credit: "5.5", Semester: winter1},
		{CourseNumber: "10403", Credit: "5.25", Semester: winter1},
		{CourseNumber: "104031", Credit: "5.5", Grade: "101", Semester: winter1},
	}}})
	require.Error(t, err)
	vErrs, ok := err.(validator.ValidationErrors)
	require.True(t, ok)

	fields := make(map[string]string)
	for _, fe := range core.TranslateErrors(vErrs, translator) {
		fields[fe.Field] = fe.Error
	}
	assert.Contains(t, fields, "courses[1].course_number")
	assert.Contains(t, fields, "courses[1].credit")
	assert.Contains(t, fields, "courses[2].grade")
	assert.Contains(t, fields, "courses[2].course_number")

	updated, err := svc.Dispatch(ctx, st.ID, ReplaceDetails{Details{
		CatalogID: "2020-cs",
		Courses:   []course.Record{{CourseNumber: "104031", Credit: "5.5", Semester: winter1}},
	}})
	require.NoError(t, err)
	assert.Equal(t, "2020-cs", updated.Details.CatalogID)
	assert.Len(t, updated.Details.Courses, 1)
}

func TestService_Subscribe_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	var (
		mu    sync.Mutex
		calls int
	)
	svc.Subscribe(func(Student, Action) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unsubscribe := svc.Subscribe(func(Student, Action) {})
			rec := course.Record{CourseNumber: strconv.Itoa(100000 + i), Credit: "1", Semester: winter1}
			_, err := svc.Dispatch(ctx, st.ID, AddCourse{rec})
			assert.NoError(t, err)
			unsubscribe()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, calls)
	stored, err := svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Details.Courses, 10)
}
