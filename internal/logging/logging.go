package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	if os.Getenv("RESONANCE_DEBUG") != "" {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func Info(msg string, fields map[string]any)  { log.WithFields(logrus.Fields(fields)).Info(msg) }
func Warn(msg string, fields map[string]any)  { log.WithFields(logrus.Fields(fields)).Warn(msg) }
func Error(msg string, fields map[string]any) { log.WithFields(logrus.Fields(fields)).Error(msg) }
func Debug(msg string, fields map[string]any) { log.WithFields(logrus.Fields(fields)).Debug(msg) }
