package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedValueTemplateConstant = "%w %q"
	consoleTimeLayoutConstant        = "15:04:05"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

// LogFormat enumerates supported logging formats.
type LogFormat string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Supported log formats.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var (
	// ErrUnsupportedLogLevel indicates a log level outside the supported set.
	ErrUnsupportedLogLevel = errors.New("unsupported log level")
	// ErrUnsupportedLogFormat indicates a log format outside the supported set.
	ErrUnsupportedLogFormat = errors.New("unsupported log format")
)

// LoggerOutputs pairs the diagnostic logger with the logger used for
// human-facing console messages. The console logger is a no-op in structured
// mode.
type LoggerOutputs struct {
	DiagnosticLogger *zap.Logger
	ConsoleLogger    *zap.Logger
}

// LoggerFactory builds zap loggers for the configured level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a LoggerFactory.
func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{}
}

// CreateLoggerOutputs builds loggers writing to standard error.
func (factory LoggerFactory) CreateLoggerOutputs(logLevel LogLevel, logFormat LogFormat) (LoggerOutputs, error) {
	level, levelError := parseLogLevel(logLevel)
	if levelError != nil {
		return LoggerOutputs{}, levelError
	}

	sink := zapcore.Lock(os.Stderr)
	switch LogFormat(strings.ToLower(strings.TrimSpace(string(logFormat)))) {
	case LogFormatStructured:
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), sink, level)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(core),
			ConsoleLogger:    zap.NewNop(),
		}, nil
	case LogFormatConsole:
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(consoleTimeLayoutConstant)
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		diagnosticCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)

		consoleConfig := zapcore.EncoderConfig{MessageKey: "message", LineEnding: zapcore.DefaultLineEnding}
		consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), sink, zapcore.InfoLevel)
		return LoggerOutputs{
			DiagnosticLogger: zap.New(diagnosticCore),
			ConsoleLogger:    zap.New(consoleCore),
		}, nil
	default:
		return LoggerOutputs{}, fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedLogFormat, logFormat)
	}
}

func parseLogLevel(logLevel LogLevel) (zapcore.Level, error) {
	switch LogLevel(strings.ToLower(strings.TrimSpace(string(logLevel)))) {
	case LogLevelDebug:
		return zapcore.DebugLevel, nil
	case LogLevelInfo:
		return zapcore.InfoLevel, nil
	case LogLevelWarn:
		return zapcore.WarnLevel, nil
	case LogLevelError:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf(unsupportedValueTemplateConstant, ErrUnsupportedLogLevel, logLevel)
	}
}
