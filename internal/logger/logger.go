package logger

import (
	"os"

	"github.com/rs/zerolog"
)

func New(env string) zerolog.Logger {
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "service-portal").Logger()
	switch env {
	case "development":
		log = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	case "production":
		log = log.Level(zerolog.InfoLevel)
	}
	return log
}
