package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"relayapi/src/auth"
	"relayapi/src/database"
	"relayapi/src/repository"
	"relayapi/src/server"
	"relayapi/src/store"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel // fallback seguro
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	st := store.New(store.GetConfig().PersistPath)
	gate := auth.NewGate(auth.GetConfig().ValidTokens)

	// Optional relational archive; the relay runs fine without it.
	if err := database.InitArchiveDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to archive database")
	}
	if database.Enabled() {
		st.SetArchiver(repository.NewEventRepository())
	}

	server.StartServer(server.GetConfig(), st, gate)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
