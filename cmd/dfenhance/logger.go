package main

import (
	"fmt"
	"io"
	"os"

	"github.com/facebookincubator/go-belt/tool/logger"
	beltlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger logs to stderr and, if logPath is not empty, appends to the
// file at logPath. A disabled logger discards everything.
func newLogger(
	level logger.Level,
	enabled bool,
	logPath string,
) (logger.Logger, io.Closer, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if !enabled {
		l.SetOutput(io.Discard)
		return beltlogrus.New(l).WithLevel(level), nopCloser{}, nil
	}
	if logPath == "" {
		l.SetOutput(os.Stderr)
		return beltlogrus.New(l).WithLevel(level), nopCloser{}, nil
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open the log file '%s': %w", logPath, err)
	}
	l.SetOutput(io.MultiWriter(os.Stderr, f))
	return beltlogrus.New(l).WithLevel(level), f, nil
}
