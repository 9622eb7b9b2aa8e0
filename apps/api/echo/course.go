package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

const suggestionField = "suggestion"

type courseApi struct{}

func registerCourseAPI(g *echo.Group) {
	api := courseApi{}

	cg := g.Group("/courses")
	cg.POST("/validate", api.validate)
	cg.GET("/grades", api.grades)
}

// Handlers

func (api *courseApi) validate(ctx echo.Context) error {
	var data ValidateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ValidateRequest")
	}

	rec, err := course.ValidateRecord(data.Record, data.Siblings, data.IsNew)
	if err != nil {
		return withGradeSuggestion(err, data.Record.Grade)
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *courseApi) grades(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, GradesResponse{
		Tokens:       course.GradeTokens,
		PassingGrade: course.PassingGrade,
		States:       []course.State{course.StateCompleted, course.StateNotCompleted, course.StateInProgress},
	})
}

// withGradeSuggestion adds the closest non-numeric grade to a grade rejection, under "suggestion".
func withGradeSuggestion(err error, grade course.Grade) error {
	field, _, ok := course.Rejection(err)
	if !ok || field != course.FieldGrade {
		return err
	}
	token, found := course.SuggestGradeToken(grade)
	if !found {
		return err
	}

	vErr := errors.Cause(err).(*core.ValidationError)
	fields := make([]core.FieldError, 0, len(vErr.Fields)+1)
	fields = append(fields, vErr.Fields...)
	fields = append(fields, core.FieldError{Field: suggestionField, Error: token})
	return core.NewValidationError(vErr.Err, fields...)
}
