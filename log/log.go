// Package log is a thin logrus front that stays silent unless logs.write is on.
package log

import (
	"errors"
	"io"
	"path/filepath"

	"github.com/coursecast/coursecast/constant"
	"github.com/coursecast/coursecast/key"
	"github.com/coursecast/coursecast/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Fields is an alias so callers don't need to import logrus.
type Fields = logrus.Fields

var enabled bool

var discard = &logrus.Logger{
	Out:       io.Discard,
	Formatter: new(logrus.TextFormatter),
	Hooks:     make(logrus.LevelHooks),
	Level:     logrus.PanicLevel,
}

// Setup points logrus at a rotating file under where.Logs().
// When logs.write is false every call in this package is a no-op.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	logrus.SetOutput(&lumberjack.Logger{
		Filename:   filepath.Join(dir, constant.Coursecast+".log"),
		MaxSize:    viper.GetInt(key.LogsMaxSize),
		MaxBackups: viper.GetInt(key.LogsMaxBackups),
		Compress:   true,
	})

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// WithFields returns an entry carrying fields on every line it writes.
// The entry discards its output when logging is disabled.
func WithFields(fields Fields) *logrus.Entry {
	if !enabled {
		return logrus.NewEntry(discard).WithFields(fields)
	}
	return logrus.WithFields(fields)
}

func Error(args ...any) {
	if enabled {
		logrus.Error(args...)
	}
}

func Errorf(format string, args ...any) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}

func Warn(args ...any) {
	if enabled {
		logrus.Warn(args...)
	}
}

func Warnf(format string, args ...any) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}

func Info(args ...any) {
	if enabled {
		logrus.Info(args...)
	}
}

func Infof(format string, args ...any) {
	if enabled {
		logrus.Infof(format, args...)
	}
}

func Debug(args ...any) {
	if enabled {
		logrus.Debug(args...)
	}
}

func Debugf(format string, args ...any) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
