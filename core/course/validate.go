package course

import (
	stderrors "errors"

	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core"
)

// Rejection reasons. The messages are shown to the student as is.
var (
	ErrInvalidCourseNumber = stderrors.New("מספר קורס חייב להכיל 6 ספרות בדיוק")
	ErrDuplicateCourse     = stderrors.New("הקורס כבר קיים בסמסטר זה")
	ErrInvalidCredit       = stderrors.New("נקודות זכות חייבות להיות מספר אי-שלילי בקפיצות של 0.5")
	ErrInvalidGrade        = stderrors.New("ציון חייב להיות מספר שלם בין 0 ל-100 או אחד מהערכים: עבר, נכשל, פטור ללא ניקוד, פטור עם ניקוד, לא השלים")
)

// Fields reported by rejections
const (
	FieldCourseNumber = "course_number"
	FieldCredit       = "credit"
	FieldGrade        = "grade"
)

// ValidateRecord checks a candidate row against its semester siblings.
// The checks run in order (course number, uniqueness, credit, grade) and the first failure is returned
// as a *core.ValidationError. An accepted row is returned normalized, with its state recomputed.
func ValidateRecord(candidate Record, siblings []Record, isNew bool) (Record, error) {
	switch {
	case !ValidCourseNumber(candidate.CourseNumber):
		return Record{}, reject(FieldCourseNumber, ErrInvalidCourseNumber)
	case !UniqueCourseNumber(candidate.CourseNumber, siblings, isNew):
		return Record{}, reject(FieldCourseNumber, ErrDuplicateCourse)
	case !ValidCredit(candidate.Credit):
		return Record{}, reject(FieldCredit, ErrInvalidCredit)
	case !ValidGrade(candidate.Grade):
		return Record{}, reject(FieldGrade, ErrInvalidGrade)
	}
	return Normalize(candidate), nil
}

// Rejection returns the field and reason of a rejected row.
func Rejection(err error) (field, reason string, ok bool) {
	vErr, isVErr := errors.Cause(err).(*core.ValidationError)
	if !isVErr || len(vErr.Fields) == 0 {
		return "", "", false
	}
	return vErr.Fields[0].Field, vErr.Fields[0].Error, true
}

func reject(field string, reason error) error {
	return core.NewValidationError(reason, core.FieldError{Field: field, Error: reason.Error()})
}
