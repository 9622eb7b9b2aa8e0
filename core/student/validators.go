package student

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

var uniqueCourseTag = "unique_course"

// InitValidators registers the details validators. The course tags must be registered too (see course.InitValidators).
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(detailsStructValidation, Details{})
	core.RegisterCustomTranslation(validate, translator, uniqueCourseTag, course.ErrDuplicateCourse.Error())
}

// detailsStructValidation reports every row that repeats a course number already used in its semester.
func detailsStructValidation(sl validator.StructLevel) {
	details := sl.Current().Interface().(Details)

	seen := make(map[[2]string]bool, len(details.Courses))
	for i, rec := range details.Courses {
		key := [2]string{rec.Semester, rec.CourseNumber}
		if seen[key] {
			sl.ReportError(
				rec.CourseNumber,
				fmt.Sprintf("courses[%d].course_number", i),
				fmt.Sprintf("Courses[%d].CourseNumber", i),
				uniqueCourseTag,
				"",
			)
		}
		seen[key] = true
	}
}
