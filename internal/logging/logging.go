// Package logging sets up the process-wide logrus logger, optionally
// forwarding warnings and above to Sentry via logrus_sentry. The
// source module declared both dependencies without ever wiring them
// to a logger; this gives them that home.
package logging

import (
	"os"

	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// New builds the root logger. If sentryDSN is empty, no Sentry hook is
// attached and logging is plain structured text to stderr.
func New(sentryDSN string, level logrus.Level) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if sentryDSN == "" {
		return log, nil
	}

	hook, err := logrus_sentry.NewSentryHook(sentryDSN, []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	})
	if err != nil {
		return nil, err
	}
	log.AddHook(hook)
	return log, nil
}

// ParseLevel resolves a verbosity string to a logrus.Level, defaulting
// to Info on an unrecognised value.
func ParseLevel(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
