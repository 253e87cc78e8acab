package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	pkg "github.com/lunarfall/ballot/pkg/internal"
	"github.com/lunarfall/ballot/pkg/internal/cache"
	"github.com/lunarfall/ballot/pkg/internal/database"
	"github.com/lunarfall/ballot/pkg/internal/http"
	"github.com/lunarfall/ballot/pkg/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString(" ____        _ _       _\n| __ )  __ _| | | ___ | |_\n|  _ \\ / _` | | |/ _ \\| __|\n| |_) | (_| | | | (_) | |_\n|____/ \\__,_|_|_|\\___/ \\__|"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Ballot"), pkg.AppVersion)
	fmt.Printf("The timed poll voting service\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Prepare local cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing local cache.")
	}

	// Connect to database, or run fully in memory for ephemeral setups
	var polls services.PollStore
	var ledger services.VoteLedger
	if viper.GetString("database.driver") == "memory" {
		log.Warn().Msg("Running with the in-memory store, nothing will survive a restart.")
		store := services.NewMemoryStore()
		polls, ledger = store, store
	} else {
		if err := database.NewGorm(); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when connect to database.")
		} else if err := database.RunMigration(database.C); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when running database auto migration.")
		}
		store := services.NewGormStore(database.C)
		polls, ledger = store, store
	}

	srv := services.NewVotingEngine(polls, ledger)

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	quartz.AddFunc("@every 60m", srv.DoAutoDatabaseCleanup)
	quartz.Start()

	// Server
	go func() {
		if err := http.NewServer(srv).Listen(viper.GetString("bind")); err != nil {
			log.Fatal().Err(err).Msg("An error occurred when starting http server.")
		}
	}()

	// Messages
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	quartz.Stop()
}
