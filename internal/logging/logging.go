// Package logging provides the reconciliation engine's structured log
// lines, tagged with fields like bibcode and orcidid, built on the
// standard library's log package the way the rest of this codebase logs.
package logging

import (
	"fmt"
	"log"
	"strings"
)

// Fields is a set of key/value tags attached to a log line. Tags are
// printed in map iteration order, which is not fixed.
type Fields map[string]string

// With starts a tagged logger. Typical use:
//
//	logging.With(logging.Fields{"orcidid": orcidID, "bibcode": bibcode}).Warnf("claim refused")
func With(fields Fields) *Logger {
	return &Logger{fields: fields}
}

// Logger is a thin wrapper around the standard logger that prefixes each
// line with its tags in key=value form.
type Logger struct {
	fields Fields
}

func (l *Logger) tagPrefix() string {
	if len(l.fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(l.fields))
	for k, v := range l.fields {
		parts = append(parts, fmt.Sprintf("%s=%s", k, v))
	}
	return "[" + strings.Join(parts, " ") + "] "
}

func (l *Logger) Infof(format string, args ...interface{}) {
	log.Printf(l.tagPrefix()+format, args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	log.Printf("WARN "+l.tagPrefix()+format, args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	log.Printf("ERROR "+l.tagPrefix()+format, args...)
}
