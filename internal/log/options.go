package log

// Config is a type manipulated by Option functions.
type Config struct {
	// Name is attached to every entry under the "logger" key when set.
	Name string
	// Level is the minimum level to log at, can be debug, info, warn, error or fatal.
	Level string
	// Format is the format to write logs in, can be json or text.
	Format string
	// OmitTimestamp will omit the 'ts' field from the log messages.
	OmitTimestamp bool
	// GlobalFields are key/value pairs that show up on every log message.
	GlobalFields map[string]string
	// OutputPaths is a list of file paths (or stdout/stderr) to write log output to.
	OutputPaths []string
	// ErrorOutputPaths is a list of file paths to write internal logger errors to.
	ErrorOutputPaths []string
}

// Option is a function that mutates Config.
type Option func(*Config)

const (
	JSONFormat = "json"
	TextFormat = "text"
)

const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
	FatalLevel = "fatal"
)

// WithName sets Config.Name.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithOmitTimestamp sets Config.OmitTimestamp.
func WithOmitTimestamp() Option {
	return func(c *Config) {
		c.OmitTimestamp = true
	}
}

// WithFormat sets Config.Format, can be "json" or "text". Anything else falls back to text.
func WithFormat(format string) Option {
	return func(c *Config) {
		c.Format = format
	}
}

// WithLevel sets Config.Level, can be "debug", "info", "warn", "error", or "fatal".
// An empty or unknown level logs at debug.
func WithLevel(level string) Option {
	return func(c *Config) {
		c.Level = level
	}
}

// reserved keys written by the encoder itself
var reservedFields = map[string]struct{}{
	"lvl":    {},
	"msg":    {},
	"ts":     {},
	"logger": {},
}

// WithFields adds a key value pair to Config.GlobalFields. Keys used by the encoder are ignored.
func WithFields(key string, val string) Option {
	return func(c *Config) {
		if c == nil {
			return
		}
		if _, ok := reservedFields[key]; ok {
			return
		}
		if c.GlobalFields == nil {
			c.GlobalFields = make(map[string]string)
		}
		c.GlobalFields[key] = val
	}
}

// WithOutputPaths appends to Config.OutputPaths. Empty paths are skipped.
func WithOutputPaths(paths ...string) Option {
	return func(c *Config) {
		if c != nil {
			c.OutputPaths = appendNonEmpty(c.OutputPaths, paths)
		}
	}
}

// WithErrorOutputPaths appends to Config.ErrorOutputPaths. Empty paths are skipped.
func WithErrorOutputPaths(paths ...string) Option {
	return func(c *Config) {
		if c != nil {
			c.ErrorOutputPaths = appendNonEmpty(c.ErrorOutputPaths, paths)
		}
	}
}

func appendNonEmpty(dst, paths []string) []string {
	for _, p := range paths {
		if p != "" {
			dst = append(dst, p)
		}
	}
	return dst
}
