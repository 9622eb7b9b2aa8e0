package tests

import (
	"net/http"
	"testing"

	. "github.com/sogrim/technion-sogrim-sub000/apps/api/echo"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

func Test_home(t *testing.T) {
	e := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	e.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "Welcome to Sogrim API!" {
		t.Errorf("home() = %d %q", rec.Code, rec.Body.String())
	}
}

func Test_courseApi_validate(t *testing.T) {
	e := setup(t)
	path := "/v1/courses/validate"

	siblings := []course.Record{{Name: "מבוא למדמ\"ח", CourseNumber: "234114", Credit: "4", Semester: "חורף_1"}}
	body := func(rec course.Record, isNew bool) []byte {
		return marchallObj(t, ValidateRequest{Record: rec, Siblings: siblings, IsNew: isNew})
	}

	tests := []httpTest{
		{
			name:     "accepted",
			body:     body(course.Record{Name: "אלגברה", CourseNumber: "104166", Credit: "5.5", Grade: "-", Type: "-", Semester: "חורף_1"}, true),
			wantCode: http.StatusOK,
			wantData: []byte(`{"name":"אלגברה","course_number":"104166","credit":5.5,"semester":"חורף_1","state":"בתהליך"}`),
		},
		{
			name:     "accepted with numeric fields",
			body:     []byte(`{"record":{"course_number":"104166","credit":3,"grade":55},"is_new":true}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"name":"","course_number":"104166","credit":3,"grade":"55","semester":"","state":"הושלם"}`),
		},
		{
			name:     "invalid course number",
			body:     body(course.Record{CourseNumber: "12345", Credit: "3"}, true),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_number": course.ErrInvalidCourseNumber.Error()}),
		},
		{
			name:     "duplicate",
			body:     body(course.Record{CourseNumber: "234114", Credit: "4", Semester: "חורף_1"}, true),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_number": course.ErrDuplicateCourse.Error()}),
		},
		{
			name:     "duplicate of an existing row",
			body:     body(course.Record{CourseNumber: "234114", Credit: "4", Semester: "חורף_1"}, false),
			wantCode: http.StatusOK,
			wantData: []byte(`{"name":"","course_number":"234114","credit":4,"semester":"חורף_1","state":"בתהליך"}`),
		},
		{
			name:     "quarter credit",
			body:     body(course.Record{CourseNumber: "104031", Credit: "5.25"}, true),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"credit": course.ErrInvalidCredit.Error()}),
		},
		{
			name:     "invalid grade with suggestion",
			body:     body(course.Record{CourseNumber: "104031", Credit: "5", Grade: "עברר"}, true),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": course.ErrInvalidGrade.Error(), "suggestion": course.GradePass}),
		},
		{
			name:     "invalid grade",
			body:     body(course.Record{CourseNumber: "104031", Credit: "5", Grade: "101"}, true),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": course.ErrInvalidGrade.Error()}),
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = path
	}
	runHTTPTests(t, e.app, tests)
}

func Test_courseApi_grades(t *testing.T) {
	e := setup(t)

	runHTTPTests(t, e.app, []httpTest{{
		name:     "grades",
		method:   http.MethodGet,
		path:     "/v1/courses/grades",
		wantCode: http.StatusOK,
		wantData: marchallObj(t, GradesResponse{
			Tokens:       course.GradeTokens,
			PassingGrade: course.PassingGrade,
			States:       []course.State{course.StateCompleted, course.StateNotCompleted, course.StateInProgress},
		}),
	}})
}
