package log

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	zap.ReplaceGlobals(New(WithLevel(InfoLevel)).Desugar())
}

// New creates a SugaredLogger, overriding any default options with the input options, and installs it
// as the global logger returned by G.
//
// The default options configure a text logger at the debug level. New will panic if any errors occur.
func New(options ...Option) *zap.SugaredLogger {
	const op = "log.New"

	cfg := &Config{
		Level:        DebugLevel,
		Format:       TextFormat,
		GlobalFields: make(map[string]string),
	}
	for _, opt := range options {
		opt(cfg)
	}

	if cfg.OutputPaths == nil {
		WithOutputPaths("stderr")(cfg)
	}
	if cfg.ErrorOutputPaths == nil {
		WithErrorOutputPaths("stderr")(cfg)
	}

	var enc string
	var timeEncoder zapcore.TimeEncoder
	var levelEncoder zapcore.LevelEncoder
	switch strings.ToLower(cfg.Format) {
	case JSONFormat:
		enc = "json"
		timeEncoder = zapcore.ISO8601TimeEncoder
		levelEncoder = zapcore.LowercaseLevelEncoder
	default:
		enc = "console"
		timeEncoder = consoleTimeEncoder
		levelEncoder = zapcore.CapitalLevelEncoder
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "lvl",
		NameKey:          "logger",
		EncodeLevel:      levelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: consoleSeparator,
	}

	if !cfg.OmitTimestamp {
		encoderCfg.EncodeTime = timeEncoder
		encoderCfg.TimeKey = "ts"
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         enc,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
		EncoderConfig:    encoderCfg,
	}

	lg, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Errorf("%s: %v", op, err))
	}

	// sorted so the field order is stable between runs
	keys := make([]string, 0, len(cfg.GlobalFields))
	for k := range cfg.GlobalFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	globalFields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		globalFields = append(globalFields, zap.String(k, cfg.GlobalFields[k]))
	}
	if len(globalFields) > 0 {
		lg = lg.With(globalFields...)
	}
	if cfg.Name != "" {
		lg = lg.Named(cfg.Name)
	}
	zap.ReplaceGlobals(lg)
	return lg.Sugar()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.DebugLevel
	}
}

// ValidLevel reports whether level is one of the level names accepted by WithLevel.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel:
		return true
	}
	return false
}

// ValidFormat reports whether format is one of the formats accepted by WithFormat.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case JSONFormat, TextFormat:
		return true
	}
	return false
}

type contextKey int

const logContextKey contextKey = 0

type logContext map[string]interface{}

// Put returns a copy of ctx annotated with keyvals. Loggers obtained with With(ctx) carry them as fields.
func Put(ctx context.Context, keyvals ...interface{}) context.Context {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "(MISSING)")
	}

	parent := from(ctx)
	v := make(logContext, len(parent)+len(keyvals)/2)
	for k, val := range parent {
		v[k] = val
	}
	for i := 0; i < len(keyvals); i += 2 {
		v[fmt.Sprint(keyvals[i])] = keyvals[i+1]
	}

	return context.WithValue(ctx, logContextKey, v)
}

func from(ctx context.Context) logContext {
	if v, ok := ctx.Value(logContextKey).(logContext); ok {
		return v
	}
	return logContext{}
}

// With returns the global logger annotated with the keyvals stored in ctx by Put.
func With(ctx context.Context) *zap.SugaredLogger {
	l := G()
	if ctx == nil {
		return l
	}

	vals := from(ctx)
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, 2*len(vals))
	for _, k := range keys {
		args = append(args, k, vals[k])
	}
	return l.With(args...)
}

// Debugw logs msg at debug level using the logger returned by With(ctx), keyvals become fields.
func Debugw(ctx context.Context, msg string, keyvals ...interface{}) {
	With(ctx).Debugw(msg, keyvals...)
}

// Infow logs msg at info level using the logger returned by With(ctx), keyvals become fields.
func Infow(ctx context.Context, msg string, keyvals ...interface{}) {
	With(ctx).Infow(msg, keyvals...)
}

// Warnw logs msg at warn level using the logger returned by With(ctx), keyvals become fields.
func Warnw(ctx context.Context, msg string, keyvals ...interface{}) {
	With(ctx).Warnw(msg, keyvals...)
}

// Errorw logs msg at error level using the logger returned by With(ctx), keyvals become fields.
func Errorw(ctx context.Context, msg string, keyvals ...interface{}) {
	With(ctx).Errorw(msg, keyvals...)
}

// G represents the global logger
var G = zap.S
