package course

import "strings"

// ClassifyState derives the completion state of a course from its grade.
func ClassifyState(grade Grade) State {
	if grade.IsUnset() {
		return StateInProgress
	}
	if passingTokens[strings.TrimSpace(string(grade))] {
		return StateCompleted
	}
	if n, ok := grade.Numeric(); ok && n >= PassingGrade {
		return StateCompleted
	}
	return StateNotCompleted
}

// Normalize clears the empty-cell sentinels from type and grade and recomputes the state.
func Normalize(rec Record) Record {
	if isUnset(rec.Type) {
		rec.Type = ""
	}
	if rec.Grade.IsUnset() {
		rec.Grade = ""
	} else {
		rec.Grade = Grade(strings.TrimSpace(string(rec.Grade)))
	}
	rec.State = ClassifyState(rec.Grade)
	return rec
}
