package echoapi

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads ?ordering=name,-created_at; a leading "-" sorts descending.
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// ValidateRequest is the body of POST /courses/validate.
type ValidateRequest struct {
	Record   course.Record   `json:"record"`
	Siblings []course.Record `json:"siblings"`
	IsNew    bool            `json:"is_new"`
}

// GradesResponse describes the grades a course row accepts.
type GradesResponse struct {
	Tokens       []string       `json:"tokens"`
	PassingGrade int            `json:"passing_grade"`
	States       []course.State `json:"states"`
}

// DetailsResponse is a student's details along with their totals.
type DetailsResponse struct {
	Details student.Details `json:"details"`
	Summary student.Summary `json:"summary"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// bindFieldUpdates decodes a JSON array of {"field", "value"} updates from the request body.
func bindFieldUpdates(ctx echo.Context) ([]course.FieldUpdate, error) {
	var updates course.FieldUpdates
	if err := json.NewDecoder(ctx.Request().Body).Decode(&updates); err != nil {
		return nil, core.NewValidationError(errors.Wrap(err, "invalid updates"))
	}
	return updates, nil
}

// pathParam returns the unescaped value of a path parameter.
func newDetailsResponse(details student.Details) DetailsResponse {
	return DetailsResponse{Details: details, Summary: details.Summary()}
}

func pathParam(ctx echo.Context, name string) string {
	val := ctx.Param(name)
	if unescaped, err := url.PathUnescape(val); err == nil {
		return unescaped
	}
	return val
}
