package course

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	rec := Record{Name: "חדו\"א 1", CourseNumber: "104031", Credit: "5.5", Semester: "חורף_1"}

	got := Apply(rec,
		SetGrade{"77"},
		SetCredit{"5"},
		SetType{"חובה"},
		SetName{"חדו\"א 1מ"},
		SetCourseNumber{"104032"},
		SetSemester{"אביב_1"},
	)
	assert.Equal(t, Record{
		Name: "חדו\"א 1מ", CourseNumber: "104032", Credit: "5", Grade: "77", Type: "חובה", Semester: "אביב_1",
	}, got)
	assert.Equal(t, Credit("5.5"), rec.Credit, "original row must not change")

	assert.Equal(t, rec, Apply(rec))
	assert.Equal(t, Grade("60"), Apply(rec, SetGrade{"50"}, SetGrade{"60"}).Grade, "last update wins")
}

func TestDecodeFieldUpdate(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    FieldUpdate
		wantErr error
	}{
		{name: "name", data: `{"field":"name","value":"מבני נתונים"}`, want: SetName{"מבני נתונים"}},
		{name: "course number", data: `{"field":"course_number","value":"234218"}`, want: SetCourseNumber{"234218"}},
		{name: "numeric credit", data: `{"field":"credit","value":3.5}`, want: SetCredit{"3.5"}},
		{name: "string credit", data: `{"field":"credit","value":"3"}`, want: SetCredit{"3"}},
		{name: "numeric grade", data: `{"field":"grade","value":90}`, want: SetGrade{"90"}},
		{name: "cleared grade", data: `{"field":"grade","value":null}`, want: SetGrade{""}},
		{name: "type", data: `{"field":"type","value":"בחירה חופשית"}`, want: SetType{"בחירה חופשית"}},
		{name: "semester", data: `{"field":"semester","value":"קיץ_2"}`, want: SetSemester{"קיץ_2"}},
		{name: "unknown field", data: `{"field":"state","value":"הושלם"}`, wantErr: ErrUnknownField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeFieldUpdate([]byte(tt.data))
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DecodeFieldUpdate([]byte(`{"field":"credit","value":{"a":1}}`))
	assert.Error(t, err)
}

func TestFieldUpdates_UnmarshalJSON(t *testing.T) {
	var updates FieldUpdates
	err := json.Unmarshal([]byte(`[{"field":"grade","value":"עבר"},{"field":"credit","value":2}]`), &updates)
	require.NoError(t, err)
	assert.Equal(t, FieldUpdates{SetGrade{GradePass}, SetCredit{"2"}}, updates)

	err = json.Unmarshal([]byte(`[{"field":"lol","value":1}]`), &updates)
	assert.Equal(t, ErrUnknownField, errors.Cause(err))
}

func TestSuggestGradeToken(t *testing.T) {
	tests := []struct {
		grade  Grade
		want   string
		wantOk bool
	}{
		{grade: "עברר", want: GradePass, wantOk: true},
		{grade: "נכשלל", want: GradeFail, wantOk: true},
		{grade: "פטור ללא ניקד", want: GradeExemptionWithoutCredit, wantOk: true},
		{grade: "לא השלם", want: GradeNotComplete, wantOk: true},
		{grade: "xyz"},
		{grade: GradePass},
		{grade: "85"},
		{grade: "101"},
		{grade: ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.grade), func(t *testing.T) {
			got, ok := SuggestGradeToken(tt.grade)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
