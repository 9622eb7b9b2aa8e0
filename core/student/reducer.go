package student

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

// ErrCourseNotFound is returned when an action targets a row that is not in the courses table.
var ErrCourseNotFound = errors.New("course not found")

// Action is a change to a student's details. The set of actions is closed:
// AddCourse, EditCourse, DeleteCourse and ReplaceDetails.
type Action interface {
	isAction()
}

type (
	AddCourse struct {
		Record course.Record
	}

	EditCourse struct {
		Semester     string
		CourseNumber string
		Updates      []course.FieldUpdate
	}

	DeleteCourse struct {
		Semester     string
		CourseNumber string
	}

	ReplaceDetails struct {
		Details Details
	}
)

func (AddCourse) isAction()      {}
func (EditCourse) isAction()     {}
func (DeleteCourse) isAction()   {}
func (ReplaceDetails) isAction() {}

// Reduce returns the details that result from applying action.
// details is never modified; on error it is returned as is.
func Reduce(details Details, action Action) (Details, error) {
	next := details.clone()

	switch a := action.(type) {
	case AddCourse:
		rec, err := course.ValidateRecord(a.Record, next.Semester(a.Record.Semester), true)
		if err != nil {
			return details, err
		}
		next.Courses = append(next.Courses, rec)

	case EditCourse:
		i := next.Find(a.Semester, a.CourseNumber)
		if i < 0 {
			return details, ErrCourseNotFound
		}
		orig := next.Courses[i]
		edited := course.Apply(orig, a.Updates...)
		isNew := edited.CourseNumber != orig.CourseNumber || edited.Semester != orig.Semester

		siblings := make([]course.Record, 0)
		for j, rec := range next.Courses {
			if j != i && rec.Semester == edited.Semester {
				siblings = append(siblings, rec)
			}
		}
		rec, err := course.ValidateRecord(edited, siblings, isNew)
		if err != nil {
			return details, err
		}
		next.Courses[i] = rec

	case DeleteCourse:
		i := next.Find(a.Semester, a.CourseNumber)
		if i < 0 {
			return details, ErrCourseNotFound
		}
		next.Courses = append(next.Courses[:i], next.Courses[i+1:]...)

	case ReplaceDetails:
		replaced := Details{CatalogID: a.Details.CatalogID, Courses: make([]course.Record, 0, len(a.Details.Courses))}
		for i, cand := range a.Details.Courses {
			rec, err := course.ValidateRecord(cand, replaced.Semester(cand.Semester), true)
			if err != nil {
				return details, rowError(i, err)
			}
			replaced.Courses = append(replaced.Courses, rec)
		}
		next = replaced

	default:
		return details, errors.Errorf("unknown action %T", action)
	}

	next.Modified = true
	return next, nil
}

// rowError prefixes the rejected field with the row's position in the courses table.
func rowError(row int, err error) error {
	field, reason, ok := course.Rejection(err)
	if !ok {
		return err
	}
	vErr := errors.Cause(err).(*core.ValidationError)
	return core.NewValidationError(vErr.Err, core.FieldError{
		Field: fmt.Sprintf("courses[%d].%s", row, field),
		Error: reason,
	})
}
