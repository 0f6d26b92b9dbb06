// Package logging builds the zap logger used by the CLI.
//
// Console output is split by priority: Info and Warn go to the out stream,
// Error and above go to the error stream. Level "none" silences both.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Accepted levels. Quiet keeps only errors.
const (
	LevelNone   = "none"
	LevelQuiet  = "quiet"
	LevelNormal = "normal"
	LevelDebug  = "debug"
)

// ErrInvalidLevel is returned for an unknown level name.
var ErrInvalidLevel = errors.New("invalid log level")

// New returns a logger named name writing to out and errOut.
// An empty level means normal.
func New(name, level string, out, errOut io.Writer) (*zap.Logger, error) {
	var lowMin zapcore.Level
	switch strings.ToLower(level) {
	case "", LevelNormal:
		lowMin = zapcore.InfoLevel
	case LevelDebug:
		lowMin = zapcore.DebugLevel
	case LevelQuiet:
		lowMin = zapcore.ErrorLevel
	case LevelNone:
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lowMin <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig(out)), zapcore.Lock(zapcore.AddSync(out)), lowPriority),
		zapcore.NewCore(newEncoder(encoderConfig(errOut)), zapcore.Lock(zapcore.AddSync(errOut)), highPriority),
	)
	log := zap.New(core)
	if name != "" {
		log = log.Named(name)
	}
	return log, nil
}

func encoderConfig(w io.Writer) zapcore.EncoderConfig {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.CallerKey = zapcore.OmitKey
	if ColorEnabled(w) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return ec
}

// ColorEnabled reports whether w is a terminal and NO_COLOR is unset.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}

// consoleEnc drops the errorVerbose field so wrapped errors print on one line.
type consoleEnc struct {
	zapcore.Encoder
}

func newEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return consoleEnc{zapcore.NewConsoleEncoder(cfg)}
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	newFields := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok && e != nil {
				f.Interface = errors.New(e.Error())
			}
		}
		newFields = append(newFields, f)
	}
	return c.Encoder.EncodeEntry(ent, newFields)
}
