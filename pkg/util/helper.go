package util

import (
	"go.uber.org/zap"
)

// ZapWrapper adapts a zap SugaredLogger to the LeveledLogger interface
// expected by retryablehttp:
//
//	type LeveledLogger interface {
//		Error(msg string, keysAndValues ...interface{})
//		Info(msg string, keysAndValues ...interface{})
//		Debug(msg string, keysAndValues ...interface{})
//		Warn(msg string, keysAndValues ...interface{})
//	}
type ZapWrapper struct {
	Log *zap.SugaredLogger
}

func (z *ZapWrapper) Error(msg string, args ...interface{}) {
	z.Log.Errorw(msg, args...)
}

func (z *ZapWrapper) Info(msg string, args ...interface{}) {
	z.Log.Infow(msg, args...)
}

func (z *ZapWrapper) Debug(msg string, args ...interface{}) {
	z.Log.Debugw(msg, args...)
}

func (z *ZapWrapper) Warn(msg string, args ...interface{}) {
	z.Log.Warnw(msg, args...)
}
