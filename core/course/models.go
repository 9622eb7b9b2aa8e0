package course

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// State is the completion state of a course row. It is always derived from the grade.
type State string

const (
	StateCompleted    State = "הושלם"
	StateNotCompleted State = "לא הושלם"
	StateInProgress   State = "בתהליך"
)

// Non-numeric grades
const (
	GradePass                   = "עבר"
	GradeFail                   = "נכשל"
	GradeExemptionWithoutCredit = "פטור ללא ניקוד"
	GradeExemptionWithCredit    = "פטור עם ניקוד"
	GradeNotComplete            = "לא השלים"
)

const (
	// PassingGrade is the lowest numeric grade that completes a course.
	PassingGrade = 55

	minGrade = 0
	maxGrade = 100

	// unsetSentinel is how an empty cell is displayed in the courses table.
	unsetSentinel = "-"
)

var (
	GradeTokens = []string{
		GradePass,
		GradeFail,
		GradeExemptionWithoutCredit,
		GradeExemptionWithCredit,
		GradeNotComplete,
	}

	passingTokens = map[string]bool{
		GradePass:                   true,
		GradeExemptionWithoutCredit: true,
		GradeExemptionWithCredit:    true,
	}

	errNotScalar = errors.New("value must be a string or a number")
)

// Record is a single row of a student's courses table.
type Record struct {
	Name         string `json:"name"`
	CourseNumber string `json:"course_number" validate:"course_number"`
	Credit       Credit `json:"credit" validate:"credit_step"`
	Grade        Grade  `json:"grade,omitempty" validate:"course_grade"`
	Type         string `json:"type,omitempty"`
	Semester     string `json:"semester"`
	State        State  `json:"state,omitempty"`
}

// Credit is a course weight, in points. It decodes from a JSON number or string.
type Credit string

// CreditOf returns the Credit for f.
func CreditOf(f float64) Credit {
	return Credit(strconv.FormatFloat(f, 'f', -1, 64))
}

// Float64 coerces the credit to a number; an empty credit is zero.
// ok is false when the credit is not a finite number.
func (c Credit) Float64() (f float64, ok bool) {
	s := strings.TrimSpace(string(c))
	if s == "" {
		return 0, true
	}
	return parseFinite(s)
}

func (c *Credit) UnmarshalJSON(data []byte) error {
	s, err := scalarFromJSON(data)
	if err != nil {
		return errors.Wrap(err, "decoding credit")
	}
	*c = Credit(s)
	return nil
}

// MarshalJSON writes numeric credits as JSON numbers and anything else as a string.
func (c Credit) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(string(c)) != "" {
		if f, ok := c.Float64(); ok {
			return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
		}
	}
	return json.Marshal(string(c))
}

// Grade is either empty, a non-numeric grade (see GradeTokens) or a numeric grade.
// It decodes from a JSON number or string.
type Grade string

// IsUnset reports whether the grade is empty or the empty-cell sentinel.
func (g Grade) IsUnset() bool {
	return isUnset(string(g))
}

// Numeric returns the grade as a number, if it is one.
func (g Grade) Numeric() (float64, bool) {
	s := strings.TrimSpace(string(g))
	if s == "" {
		return 0, false
	}
	return parseFinite(s)
}

// IsToken reports whether the grade is one of the non-numeric grades.
func (g Grade) IsToken() bool {
	s := strings.TrimSpace(string(g))
	for _, tok := range GradeTokens {
		if s == tok {
			return true
		}
	}
	return false
}

func (g *Grade) UnmarshalJSON(data []byte) error {
	s, err := scalarFromJSON(data)
	if err != nil {
		return errors.Wrap(err, "decoding grade")
	}
	*g = Grade(s)
	return nil
}

func isUnset(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == unsetSentinel
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// scalarFromJSON returns the text of a JSON string or number; null is empty.
func scalarFromJSON(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		return "", nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return s, nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return "", errNotScalar
		}
		return n.String(), nil
	}
}
