package main

import (
	"log"
	"os"

	"skillgrid/internal/config"
	"skillgrid/internal/db"
	"skillgrid/internal/services"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cfg := config.Load()
	gdb, err := db.Open(cfg.DatabaseURL)
	errAndDie(err)
	sqlDB, err := gdb.DB()
	errAndDie(err)
	defer sqlDB.Close()

	profiles := services.NewProfileService(gdb, services.NewProfileHub())
	cli := commandLine{
		db:          gdb,
		accounts:    services.NewAccountService(profiles, nil, cfg.FacultyAccessCode),
		leaderboard: services.NewLeaderboardService(gdb),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		sqlDB.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
