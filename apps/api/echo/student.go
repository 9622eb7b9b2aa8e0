package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
)

type studentApi struct {
	svc  *student.Service
	conf *core.Config
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service, conf *core.Config) {
	api := studentApi{svc: svc, conf: conf}

	sg := g.Group("/students", jwt)
	sg.POST("/token-refresh", api.refreshToken)
	sg.GET("", api.query, adminMiddleware())

	sg.GET("/details", api.retrieveDetails)
	sg.PUT("/details", api.replaceDetails)

	cg := sg.Group("/courses")
	cg.POST("", api.addCourse)
	cg.PATCH("/:semester/:number", api.editCourse)
	cg.DELETE("/:semester/:number", api.deleteCourse)
}

// dispatch applies action to the details of the authenticated student.
func (api *studentApi) dispatch(ctx echo.Context, action student.Action) (student.Student, error) {
	st, err := getContextStudent(ctx, api.svc)
	if err != nil {
		return student.Student{}, err
	}
	return api.svc.Dispatch(ctx.Request().Context(), st.ID, action)
}

// Handlers

func (api *studentApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (api *studentApi) query(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieveDetails(ctx echo.Context) error {
	st, err := getContextStudent(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newDetailsResponse(st.Details))
}

func (api *studentApi) replaceDetails(ctx echo.Context) error {
	var data student.Details
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Details")
	}

	st, err := api.dispatch(ctx, student.ReplaceDetails{Details: data})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newDetailsResponse(st.Details))
}

func (api *studentApi) addCourse(ctx echo.Context) error {
	var data course.Record
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Record")
	}

	st, err := api.dispatch(ctx, student.AddCourse{Record: data})
	if err != nil {
		return withGradeSuggestion(err, data.Grade)
	}
	return ctx.JSON(http.StatusCreated, newDetailsResponse(st.Details))
}

func (api *studentApi) editCourse(ctx echo.Context) error {
	updates, err := bindFieldUpdates(ctx)
	if err != nil {
		return err
	}

	st, err := api.dispatch(ctx, student.EditCourse{
		Semester:     pathParam(ctx, "semester"),
		CourseNumber: pathParam(ctx, "number"),
		Updates:      updates,
	})
	if err != nil {
		return withGradeSuggestion(err, updatedGrade(updates))
	}
	return ctx.JSON(http.StatusOK, newDetailsResponse(st.Details))
}

func (api *studentApi) deleteCourse(ctx echo.Context) error {
	st, err := api.dispatch(ctx, student.DeleteCourse{
		Semester:     pathParam(ctx, "semester"),
		CourseNumber: pathParam(ctx, "number"),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newDetailsResponse(st.Details))
}

// updatedGrade returns the last grade set by updates.
func updatedGrade(updates []course.FieldUpdate) course.Grade {
	var grade course.Grade
	for _, u := range updates {
		if sg, ok := u.(course.SetGrade); ok {
			grade = sg.Grade
		}
	}
	return grade
}
