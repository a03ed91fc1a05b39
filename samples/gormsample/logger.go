package gormsample

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Logger 实现 gorm 的 logger.Interface，把 gorm 的日志转给 zap
type Logger struct {
	zl    *zap.Logger
	level logger.LogLevel
	// SlowThreshold 超过这个时间的 SQL 用 Warn 输出，0 表示不检查
	SlowThreshold time.Duration
}

// NewLogger logs every SQL statement when zl has debug enabled, and only
// slow or failed statements otherwise.
func NewLogger(zl *zap.Logger) *Logger {
	level := logger.Warn
	if zl.Core().Enabled(zap.DebugLevel) {
		level = logger.Info
	}
	return &Logger{
		zl:            zl,
		level:         level,
		SlowThreshold: 200 * time.Millisecond,
	}
}

func (l *Logger) LogMode(level logger.LogLevel) logger.Interface {
	res := *l
	res.level = level
	return &res
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Info {
		l.zl.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Warn {
		l.zl.Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= logger.Error {
		l.zl.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace 每条 SQL 执行完之后调用
func (l *Logger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	// 找不到记录是正常的业务结果
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Error("gorm: query failed", zap.String("sql", sql), zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed), zap.Error(err))
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.zl.Warn("gorm: slow query", zap.String("sql", sql), zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed), zap.Duration("threshold", l.SlowThreshold))
	case l.level >= logger.Info:
		sql, rows := fc()
		l.zl.Debug("gorm: query", zap.String("sql", sql), zap.Int64("rows", rows),
			zap.Duration("elapsed", elapsed))
	}
}
