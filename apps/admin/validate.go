package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/sogrim/technion-sogrim-sub000/core/course"
)

type validateArgs struct {
	name, number, credit, grade, typ, semester string
}

// validate checks a single course row and prints it normalized.
func (cli *commandLine) validate(args validateArgs) error {
	rec, err := course.ValidateRecord(course.Record{
		Name:         args.name,
		CourseNumber: args.number,
		Credit:       course.Credit(args.credit),
		Grade:        course.Grade(args.grade),
		Type:         args.typ,
		Semester:     args.semester,
	}, nil, true)
	if err != nil {
		field, reason, ok := course.Rejection(err)
		if !ok {
			return err
		}
		msg := fmt.Sprintf("%s: %s", field, reason)
		if suggestion, found := course.SuggestGradeToken(course.Grade(args.grade)); found && field == course.FieldGrade {
			msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		return errors.New(msg)
	}

	var data []byte
	if isTerminalFunc(cli.out) {
		data, err = json.MarshalIndent(rec, "", "  ")
	} else {
		data, err = json.Marshal(rec)
	}
	if err != nil {
		return errors.Wrap(err, "encoding course")
	}
	fmt.Fprintln(cli.out, string(data))
	return nil
}
