package main

import (
	"log"
	"os"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/dashboard"
	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/inquiry"
	"github.com/trezcool/shule/core/student"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/database"
	sqlxrepos "github.com/trezcool/shule/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(false)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		logger.Fatal("pinging database", err)
	}

	repoDB := sqlxrepos.NewDB(db)
	studentSvc := student.NewService(sqlxrepos.NewStudentRepository(repoDB))
	feeSvc := fee.NewService(sqlxrepos.NewFeeRepository(repoDB), studentSvc)
	inquirySvc := inquiry.NewService(sqlxrepos.NewInquiryRepository(repoDB), nil, false)

	// start CLI
	cli := commandLine{
		db:    db,
		stats: dashboard.NewService(studentSvc, feeSvc, inquirySvc, nil, logger, dashboard.Options{}),
		out:   os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
