package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const logDirPerm = 0o755

// getFileLogWriter builds a lumberjack rotating writer for conf's
// Path/Filename. Shared by the default logger and every named
// channel logger - each channel that outputs to a file gets its own
// lumberjack.Logger over a distinct Filename (see cmd/ringwayd's
// stageLogConf), so ringwayd-validate.log and ringwayd-record.log
// rotate independently.
func getFileLogWriter(conf *Conf) (io.Writer, error) {
	if err := os.MkdirAll(conf.Path, logDirPerm); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", conf.Path, err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(conf.Path, conf.Filename),
		MaxSize:    conf.RotateSize,
		MaxBackups: conf.RotateNum,
		MaxAge:     conf.KeepHours,
		Compress:   true,
	}, nil
}
