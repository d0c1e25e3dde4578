package postgres

import (
	"fmt"
	"time"

	gormlogger "gorm.io/gorm/logger"

	"vulnguardian/pkg/logger"
)

const slowStatementThreshold = 200 * time.Millisecond

// gormWriter forwards gorm's printf-style statement log into the application logger.
type gormWriter struct {
	log logger.LoggerInterface
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Info(fmt.Sprintf(format, args...))
}

// newGormLogger echoes statements when debug is set and stays silent otherwise.
func newGormLogger(log logger.LoggerInterface, debug bool) gormlogger.Interface {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Info
	}

	return gormlogger.New(gormWriter{log: log.With("component", "gorm")}, gormlogger.Config{
		SlowThreshold:             slowStatementThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
