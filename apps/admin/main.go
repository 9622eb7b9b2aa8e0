package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/sogrim/technion-sogrim-sub000/core"
	"github.com/sogrim/technion-sogrim-sub000/core/course"
	"github.com/sogrim/technion-sogrim-sub000/core/student"
	emailsvc "github.com/sogrim/technion-sogrim-sub000/services/email"
	logsvc "github.com/sogrim/technion-sogrim-sub000/services/logger"
	"github.com/sogrim/technion-sogrim-sub000/storage/database"
	inmemdb "github.com/sogrim/technion-sogrim-sub000/storage/database/inmem"
	sqlxrepos "github.com/sogrim/technion-sogrim-sub000/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	student.InitValidators(validate, translator)

	cli := commandLine{conf: conf, out: os.Stdout}
	if conf.Debug || conf.SendgridApiKey == "" {
		cli.mailSvc = emailsvc.NewConsoleService(conf, os.Stderr, logger)
	} else {
		cli.mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	// set up storage
	if conf.Database.InMemory() {
		cli.stSvc = student.NewService(inmemdb.NewStudentRepository(inmemdb.Open()), validate)
	} else {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		cli.db = db
		cli.stSvc = student.NewService(sqlxrepos.NewStudentRepository(db), validate)
	}

	err := cli.run(os.Args)
	cli.mailSvc.Wait()
	if cli.db != nil {
		_ = cli.db.Close()
	}
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}
