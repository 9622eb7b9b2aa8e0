package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
	emailsvc "github.com/sogrim/technion-sogrim-sub000/services/email"
	logsvc "github.com/sogrim/technion-sogrim-sub000/services/logger"
	inmemdb "github.com/sogrim/technion-sogrim-sub000/storage/database/inmem"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	var out bytes.Buffer
	conf := &core.Config{
		AppName:          "Sogrim",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Sogrim", Address: "noreply@localhost"},
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return &commandLine{
		conf:    conf,
		db:      &sqlx.DB{},
		stSvc:   student.NewService(inmemdb.NewStudentRepository(inmemdb.Open()), validate),
		mailSvc: emailsvc.NewConsoleService(conf, io.Discard, logger),
		out:     &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.wantErrStr != "":
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
			if tt.wantOut != "" {
				assert.Equal(t, tt.wantOut, out.String())
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, out := setup(t)

	migrateFunc = func(db *sqlx.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "redo", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
	}
	runCLITests(t, cli, out, tests)

	cli.db = nil
	runCLITests(t, cli, out, []cliTest{{name: "in-memory engine", args: []string{"migrate", "up"}, wantErr: errNoDB}})
}

func Test_commandLine_addStudent(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"addstudent"}, wantErr: errHelp},
		{name: "create", args: []string{"addstudent", "-name", "ישראל ישראלי", "-email", "israel@campus.technion.ac.il"}},
		{name: "create admin", args: []string{"addstudent", "-name", "Admin", "-admin"}},
	}
	runCLITests(t, cli, out, tests)
	assert.Contains(t, out.String(), "token: ")

	students, err := cli.stSvc.Query(context.Background(), core.DBOrdering{Field: student.OrderByName, Ascending: true})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.True(t, students[0].IsAdmin)
	assert.Equal(t, "israel@campus.technion.ac.il", students[1].Email)

	err = cli.run([]string{"admin", "addstudent", "-name", "Other", "-email", "israel@campus.technion.ac.il"})
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, student.ErrEmailExists, vErr.Err)
}

func Test_commandLine_addStudent_notify(t *testing.T) {
	cli, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "no email", args: []string{"addstudent", "-name", "ישראל ישראלי", "-notify"}, wantErr: errHelp},
		{name: "notify", args: []string{"addstudent", "-name", "ישראל ישראלי", "-email", "israel@campus.technion.ac.il", "-notify"}},
	})
	cli.mailSvc.Wait()

	sent := cli.mailSvc.(interface{ Sent() []core.EmailMessage }).Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "israel@campus.technion.ac.il", sent[0].To[0].Address)

	token := strings.TrimSpace(out.String()[strings.Index(out.String(), "token: ")+len("token: "):])
	assert.Contains(t, sent[0].TextContent, "שלום ישראל ישראלי")
	assert.Contains(t, sent[0].TextContent, token)
}

func Test_commandLine_validate(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no args", args: []string{"validate"}, wantErr: errHelp},
		{
			name:    "valid",
			args:    []string{"validate", "-number", "104031", "-credit", "5.5", "-grade", "-", "-semester", "חורף_1"},
			wantOut: `{"name":"","course_number":"104031","credit":5.5,"semester":"חורף_1","state":"בתהליך"}` + "\n",
		},
		{
			name:    "passed",
			args:    []string{"validate", "-number", "104031", "-credit", "5.5", "-grade", "55"},
			wantOut: `{"name":"","course_number":"104031","credit":5.5,"grade":"55","semester":"","state":"הושלם"}` + "\n",
		},
		{
			name:       "invalid course number",
			args:       []string{"validate", "-number", "1040", "-credit", "5.5"},
			wantErrStr: "course_number: " + course.ErrInvalidCourseNumber.Error(),
		},
		{
			name:       "quarter credit",
			args:       []string{"validate", "-number", "104031", "-credit", "5.25"},
			wantErrStr: "credit: " + course.ErrInvalidCredit.Error(),
		},
		{
			name:       "mistyped grade",
			args:       []string{"validate", "-number", "104031", "-credit", "5", "-grade", "עברר"},
			wantErrStr: "grade: " + course.ErrInvalidGrade.Error() + ` (did you mean "עבר"?)`,
		},
	}
	runCLITests(t, cli, out, tests)

	// a terminal gets indented output
	isTerminalFunc = func(io.Writer) bool { return true }
	defer func() { isTerminalFunc = writerIsTerminal }()
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "validate", "-number", "104031", "-credit", "3"}))
	assert.True(t, strings.HasPrefix(out.String(), "{\n  \"name\": \"\",\n"))
}
