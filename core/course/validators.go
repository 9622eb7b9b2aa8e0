package course

import (
	"math"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/sogrim/technion-sogrim-sub000/core"
)

var (
	courseNumberRgx = regexp.MustCompile(`^\d{6}$`)

	// custom validation tags
	courseNumberTag = "course_number"
	creditStepTag   = "credit_step"
	gradeTag        = "course_grade"
)

// ValidCourseNumber reports whether courseNumber is exactly six decimal digits.
func ValidCourseNumber(courseNumber string) bool {
	return courseNumberRgx.MatchString(courseNumber)
}

// UniqueCourseNumber reports whether a new row may use courseNumber.
// siblings are the other rows of the same semester. Existing rows are never checked.
func UniqueCourseNumber(courseNumber string, siblings []Record, isNew bool) bool {
	if !isNew {
		return true
	}
	for _, sib := range siblings {
		if sib.CourseNumber == courseNumber {
			return false
		}
	}
	return true
}

// ValidCredit reports whether credit is zero, or positive in steps of half a point.
func ValidCredit(credit Credit) bool {
	f, ok := credit.Float64()
	if !ok {
		return false
	}
	if f == 0 {
		return true
	}
	return f > 0 && math.Trunc(2*f) == 2*f
}

// ValidGrade reports whether grade is unset, a non-numeric grade, or an integer between 0 and 100.
func ValidGrade(grade Grade) bool {
	if grade.IsUnset() || grade.IsToken() {
		return true
	}
	n, ok := grade.Numeric()
	if !ok {
		return false
	}
	return math.Trunc(n) == n && n >= minGrade && n <= maxGrade
}

// InitValidators registers the course validation tags and their messages.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseNumberTag, courseNumberValidation)
	core.RegisterCustomTranslation(validate, translator, courseNumberTag, ErrInvalidCourseNumber.Error())

	_ = validate.RegisterValidation(creditStepTag, creditStepValidation)
	core.RegisterCustomTranslation(validate, translator, creditStepTag, ErrInvalidCredit.Error())

	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	core.RegisterCustomTranslation(validate, translator, gradeTag, ErrInvalidGrade.Error())
}

func courseNumberValidation(fl validator.FieldLevel) bool {
	return ValidCourseNumber(fl.Field().String())
}

func creditStepValidation(fl validator.FieldLevel) bool {
	return ValidCredit(Credit(fl.Field().String()))
}

func gradeValidation(fl validator.FieldLevel) bool {
	return ValidGrade(Grade(strings.TrimSpace(fl.Field().String())))
}
