package project

import (
	"fmt"
	"strings"
)

// WarningLevel represents the severity of a load warning.
type WarningLevel string

const (
	WarningLevelInfo    WarningLevel = "info"
	WarningLevelWarning WarningLevel = "warning"
)

// Warning codes.
const (
	CodeMissingField   = "missing-field"
	CodeWrongType      = "wrong-type"
	CodeBadPage        = "bad-page"
	CodeBadObject      = "bad-object"
	CodeBadTag         = "bad-tag"
	CodeBadCalibration = "bad-calibration"
	CodeBadUnit        = "bad-unit"
	CodeRehomedObject  = "rehomed-object"
	CodeDuplicatePage  = "duplicate-page"
	CodeLegacyFormat   = "legacy-format"
)

// Warning is a non-fatal inconsistency found while loading a project. The
// project still opens; warnings are shown to the user.
type Warning struct {
	Level   WarningLevel
	Code    string
	Message string
	Context map[string]interface{}
}

// Error implements the error interface so warnings can be used as errors if needed.
func (w *Warning) Error() string {
	if w.Code != "" {
		return fmt.Sprintf("[%s] %s: %s", w.Level, w.Code, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Level, w.Message)
}

// WithContext adds context to the warning and returns it for chaining.
func (w *Warning) WithContext(key string, value interface{}) *Warning {
	if w.Context == nil {
		w.Context = make(map[string]interface{})
	}
	w.Context[key] = value
	return w
}

// Collector accumulates warnings during a load.
type Collector struct {
	warnings []*Warning
}

// Add records a warning with a formatted message.
func (c *Collector) Add(level WarningLevel, code, format string, args ...interface{}) *Warning {
	w := &Warning{
		Level:   level,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
	c.warnings = append(c.warnings, w)
	return w
}

// Warnings returns the collected warnings.
func (c *Collector) Warnings() []*Warning {
	return c.warnings
}

// Summary joins warning messages into one line for status displays.
func Summary(warnings []*Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(warnings))
	for _, w := range warnings {
		msgs = append(msgs, w.Message)
	}
	if len(msgs) > 3 {
		return fmt.Sprintf("%s (and %d more)", strings.Join(msgs[:3], "; "), len(msgs)-3)
	}
	return strings.Join(msgs, "; ")
}
