// Package logger builds the logrus logger shared by the CLI, trainer and server.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// bracketFormatter prints "[INF] message key=value ..." lines.
type bracketFormatter struct{}

func (f *bracketFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var levelText string
	switch entry.Level {
	case logrus.InfoLevel:
		levelText = "[INF]"
	case logrus.WarnLevel:
		levelText = "[WARN]"
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		levelText = "[ERR]"
	case logrus.DebugLevel, logrus.TraceLevel:
		levelText = "[DBG]"
	default:
		levelText = "[???]"
	}

	var b bytes.Buffer
	b.WriteString(levelText)
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New returns a logger writing to stderr at the named level
// ("debug", "info", "warn", "error").
func New(level string) (*logrus.Logger, error) {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(level string, out io.Writer) (*logrus.Logger, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&bracketFormatter{})
	return logger, nil
}

// Discard returns a logger that drops everything, for tests and library use.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
