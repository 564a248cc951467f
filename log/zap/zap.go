// Package zap adapts a *zap.Logger to prioritycache.Logger.
package zap

import (
	"github.com/unkn0wn-root/prioritycache"
	"go.uber.org/zap"
)

var _ prioritycache.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New names the logger "prioritycache" so its lines can be filtered.
func New(l *zap.Logger) Logger { return Logger{L: l.Named("prioritycache")} }

func (z Logger) Debug(msg string, f prioritycache.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f prioritycache.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f prioritycache.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f prioritycache.Fields) { z.L.Error(msg, fields(f)...) }

func fields(f prioritycache.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}
