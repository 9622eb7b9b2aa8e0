package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	Details   Details   `json:"details"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Details is everything the student keeps about their degree: the catalog they follow and their courses table.
// Modified is set whenever the courses change, until the degree status is recomputed.
type Details struct {
	CatalogID string          `json:"catalog_id,omitempty"`
	Courses   []course.Record `json:"courses" validate:"dive"`
	Modified  bool            `json:"modified"`
}

// Semester returns the rows of a semester, in table order.
func (d Details) Semester(semester string) []course.Record {
	rows := make([]course.Record, 0)
	for _, rec := range d.Courses {
		if rec.Semester == semester {
			rows = append(rows, rec)
		}
	}
	return rows
}

// Find returns the index of a row in Courses, or -1.
func (d Details) Find(semester, courseNumber string) int {
	for i, rec := range d.Courses {
		if rec.Semester == semester && rec.CourseNumber == courseNumber {
			return i
		}
	}
	return -1
}

func (d Details) clone() Details {
	if d.Courses != nil {
		d.Courses = append(make([]course.Record, 0, len(d.Courses)), d.Courses...)
	}
	return d
}

// Summary totals the courses table by state.
type Summary struct {
	CompletedCredit     float64 `json:"completed_credit"`
	InProgressCredit    float64 `json:"in_progress_credit"`
	CompletedCourses    int     `json:"completed_courses"`
	NotCompletedCourses int     `json:"not_completed_courses"`
	InProgressCourses   int     `json:"in_progress_courses"`
}

func (d Details) Summary() Summary {
	var sum Summary
	for _, rec := range d.Courses {
		credit, _ := rec.Credit.Float64()
		switch course.ClassifyState(rec.Grade) {
		case course.StateCompleted:
			sum.CompletedCourses++
			sum.CompletedCredit += credit
		case course.StateInProgress:
			sum.InProgressCourses++
			sum.InProgressCredit += credit
		default:
			sum.NotCompletedCourses++
		}
	}
	return sum
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"omitempty,email"`
	IsAdmin bool   `json:"is_admin"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}
