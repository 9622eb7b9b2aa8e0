package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
	"github.com/sogrim/technion-sogrim-sub000/storage/database"
)

var (
	isTerminalFunc = writerIsTerminal // mockable
	migrateFunc    = database.Migrate // mockable

	errHelp = errors.New("help provided")
	errNoDB = errors.New("no database: the in-memory engine is configured")
)

type (
	// mailer sends emails in the background; Wait blocks until they are all handed off.
	mailer interface {
		core.EmailService
		Wait()
	}

	commandLine struct {
		conf    *core.Config
		db      *sqlx.DB // nil with the in-memory engine
		stSvc   *student.Service
		mailSvc mailer
		out     io.Writer
	}
)

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo|status|version - run database migrations")
	fmt.Fprintln(cli.out, "  addstudent -name NAME [-email EMAIL] [-admin] [-notify] - create a student and print their token")
	fmt.Fprintln(cli.out, "  validate -number NUMBER -credit CREDIT [-grade GRADE] [-type TYPE] [-semester SEMESTER] [-name NAME] - validate a course row")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email.")
	addStudentAdmin := addStudentCmd.Bool("admin", false, "Grant admin rights.")
	addStudentNotify := addStudentCmd.Bool("notify", false, "Email the token to the student.")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateNumber := validateCmd.String("number", "", "The 6 digits course number.")
	validateCredit := validateCmd.String("credit", "", "The course credit, in steps of 0.5.")
	validateGrade := validateCmd.String("grade", "", "A grade between 0 and 100, or a non-numeric grade.")
	validateType := validateCmd.String("type", "", "The course type.")
	validateSemester := validateCmd.String("semester", "", "The semester the course was taken in.")
	validateName := validateCmd.String("name", "", "The course name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || (*addStudentNotify && *addStudentEmail == "") {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName, *addStudentEmail, *addStudentAdmin, *addStudentNotify)

	case "validate":
		if err := validateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *validateNumber == "" {
			validateCmd.Usage()
			return errHelp
		}
		return cli.validate(validateArgs{
			name:     *validateName,
			number:   *validateNumber,
			credit:   *validateCredit,
			grade:    *validateGrade,
			typ:      *validateType,
			semester: *validateSemester,
		})

	default:
		cli.printUsage()
		return errHelp
	}
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
