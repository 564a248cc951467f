// Package logrus adapts a logrus entry to prioritycache.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"
	"github.com/unkn0wn-root/prioritycache"
)

var _ prioritycache.Logger = Logger{}

type Logger struct{ E *logrus.Entry }

// New tags every line with component=prioritycache.
func New(l *logrus.Logger) Logger {
	return Logger{E: l.WithField("component", "prioritycache")}
}

func (l Logger) Debug(msg string, f prioritycache.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f prioritycache.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f prioritycache.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f prioritycache.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
