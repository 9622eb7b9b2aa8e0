package course

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// FieldUpdate changes one field of a course row.
// The set of updates is closed: SetName, SetCourseNumber, SetCredit, SetGrade, SetType and SetSemester.
type FieldUpdate interface {
	applyTo(rec *Record)
}

type (
	SetName         struct{ Name string }
	SetCourseNumber struct{ CourseNumber string }
	SetCredit       struct{ Credit Credit }
	SetGrade        struct{ Grade Grade }
	SetType         struct{ Type string }
	SetSemester     struct{ Semester string }
)

func (u SetName) applyTo(rec *Record)         { rec.Name = u.Name }
func (u SetCourseNumber) applyTo(rec *Record) { rec.CourseNumber = u.CourseNumber }
func (u SetCredit) applyTo(rec *Record)       { rec.Credit = u.Credit }
func (u SetGrade) applyTo(rec *Record)        { rec.Grade = u.Grade }
func (u SetType) applyTo(rec *Record)         { rec.Type = u.Type }
func (u SetSemester) applyTo(rec *Record)     { rec.Semester = u.Semester }

// Apply returns a copy of rec with the updates applied in order. rec is left untouched.
func Apply(rec Record, updates ...FieldUpdate) Record {
	for _, u := range updates {
		if u != nil {
			u.applyTo(&rec)
		}
	}
	return rec
}

// ErrUnknownField is returned when decoding an update of a field that cannot be edited.
var ErrUnknownField = errors.New("unknown course field")

type wireUpdate struct {
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

// DecodeFieldUpdate decodes the wire form of an update, e.g. {"field": "credit", "value": 3.5}.
func DecodeFieldUpdate(data []byte) (FieldUpdate, error) {
	var w wireUpdate
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "decoding field update")
	}
	return w.toFieldUpdate()
}

func (w wireUpdate) toFieldUpdate() (FieldUpdate, error) {
	val, err := scalarFromJSON(w.Value)
	if err != nil {
		return nil, errors.Wrapf(err, "field %q", w.Field)
	}

	switch w.Field {
	case "name":
		return SetName{val}, nil
	case FieldCourseNumber:
		return SetCourseNumber{val}, nil
	case FieldCredit:
		return SetCredit{Credit(val)}, nil
	case FieldGrade:
		return SetGrade{Grade(val)}, nil
	case "type":
		return SetType{val}, nil
	case "semester":
		return SetSemester{val}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownField, "%q", w.Field)
	}
}

// FieldUpdates decodes a JSON array of wire updates.
type FieldUpdates []FieldUpdate

func (fu *FieldUpdates) UnmarshalJSON(data []byte) error {
	var wire []wireUpdate
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "decoding field updates")
	}
	updates := make(FieldUpdates, 0, len(wire))
	for _, w := range wire {
		u, err := w.toFieldUpdate()
		if err != nil {
			return err
		}
		updates = append(updates, u)
	}
	*fu = updates
	return nil
}
