package logger

import (
	"os"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	log := zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", "fleet-service").
		Logger()
	if env == "development" {
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	level := zerolog.InfoLevel
	if env != "production" {
		level = zerolog.DebugLevel
	}
	return log.Level(level)
}
