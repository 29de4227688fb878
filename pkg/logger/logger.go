package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zl *zap.Logger
}

var (
	globalLogger *Logger
	initOnce     sync.Once
)

func New(development bool) *Logger {
	var zl *zap.Logger
	var err error
	if development {
		zl, err = zap.NewDevelopment(zap.AddCallerSkip(2))
	} else {
		zl, err = zap.NewProduction(zap.AddCallerSkip(2))
	}
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{zl: zl}
}

func Init(development bool) {
	initOnce.Do(func() {
		globalLogger = New(development)
	})
}

func Sync() {
	if globalLogger != nil {
		_ = globalLogger.zl.Sync()
	}
}

func (l *Logger) log(level zapcore.Level, action string, userID *string, details map[string]interface{}, err error) {
	fields := make([]zap.Field, 0, len(details)+2)
	if userID != nil {
		fields = append(fields, zap.String("user_id", *userID))
	}
	for key, value := range details {
		fields = append(fields, zap.Any(key, value))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}

	switch level {
	case zapcore.WarnLevel:
		l.zl.Warn(action, fields...)
	case zapcore.ErrorLevel:
		l.zl.Error(action, fields...)
	default:
		l.zl.Info(action, fields...)
	}
}

func Info(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(zapcore.InfoLevel, action, nil, details, nil)
	}
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(zapcore.InfoLevel, action, &userID, details, nil)
	}
}

func Warn(action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(zapcore.WarnLevel, action, nil, details, nil)
	}
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(zapcore.WarnLevel, action, &userID, details, nil)
	}
}

func Error(action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(zapcore.ErrorLevel, action, nil, details, err)
	}
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	if globalLogger != nil {
		globalLogger.log(zapcore.ErrorLevel, action, &userID, details, err)
	}
}
