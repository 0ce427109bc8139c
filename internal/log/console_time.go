package log

import (
	"time"

	"go.uber.org/zap/zapcore"
)

const consoleSeparator = " | "

// consoleTimeEncoder writes the entry time as "2006-01-02 | 15:04:05.000" so the date and the clock
// line up with the other console columns.
func consoleTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02") + consoleSeparator + t.Format("15:04:05.000"))
}
