// Package logger provides the leveled logger used throughout the
// build. The interface mirrors the standard log package with an
// extra Verbose level that is only shown when requested; the
// implementation writes through zerolog so that log output can be
// switched between a human console format and JSON.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger interface {
	// Print* messages are always displayed.
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})

	// Verbose* messages are only displayed when verbose mode is
	// enabled.
	Verbose(v ...interface{})
	Verbosef(format string, v ...interface{})
	Verboseln(v ...interface{})

	// Fatal* messages are always displayed and terminate the
	// process with a non-zero exit status.
	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	Fatalln(v ...interface{})
}

type zlogger struct {
	log zerolog.Logger
}

var _ Logger = (*zlogger)(nil)

// New returns a Logger writing a console format to out.
func New(out io.Writer) *zlogger {
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	return &zlogger{
		log: zerolog.New(writer).With().Timestamp().Logger().Level(zerolog.InfoLevel),
	}
}

// NewJSON returns a Logger writing structured JSON lines to out.
func NewJSON(out io.Writer) *zlogger {
	return &zlogger{
		log: zerolog.New(out).With().Timestamp().Logger().Level(zerolog.InfoLevel),
	}
}

// SetVerbose enables or disables the Verbose* messages.
func (l *zlogger) SetVerbose(v bool) {
	if v {
		l.log = l.log.Level(zerolog.DebugLevel)
	} else {
		l.log = l.log.Level(zerolog.InfoLevel)
	}
}

func (l *zlogger) Print(v ...interface{}) {
	l.log.Info().Msg(fmt.Sprint(v...))
}

func (l *zlogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}

func (l *zlogger) Println(v ...interface{}) {
	l.log.Info().Msg(sprintln(v...))
}

func (l *zlogger) Verbose(v ...interface{}) {
	l.log.Debug().Msg(fmt.Sprint(v...))
}

func (l *zlogger) Verbosef(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}

func (l *zlogger) Verboseln(v ...interface{}) {
	l.log.Debug().Msg(sprintln(v...))
}

func (l *zlogger) Fatal(v ...interface{}) {
	l.log.Error().Msg(fmt.Sprint(v...))
	os.Exit(1)
}

func (l *zlogger) Fatalf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
	os.Exit(1)
}

func (l *zlogger) Fatalln(v ...interface{}) {
	l.log.Error().Msg(sprintln(v...))
	os.Exit(1)
}

// sprintln formats like fmt.Sprintln without the trailing newline,
// which zerolog adds itself.
func sprintln(v ...interface{}) string {
	s := fmt.Sprintln(v...)
	return s[:len(s)-1]
}
