package logger

import "go.uber.org/zap"

// Log is the process-wide sugared logger. It starts as a nop so library
// code and tests can log unconditionally; main upgrades it via Init.
var Log = zap.NewNop().Sugar()

func Init(development bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	Log = l.Sugar()
	return nil
}

func Sync() {
	_ = Log.Sync()
}
