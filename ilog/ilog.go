// Package ilog wraps logrus for the verbose developer diagnostics path
// (section 4.J): per-method Failed reasons under -v. It is deliberately
// separate from the plain colored progress output the CLI prints by
// default (section 6) — logrus is for developers chasing down why a
// method was reported Failed, not for the user-facing contract.
package ilog

import "github.com/sirupsen/logrus"

// Logger is the diagnostic logger used by the optimizer driver and CLI.
// The zero value is not usable; construct with New.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger. When verbose is false the level is raised above
// Debug so MethodFailed calls are silently dropped without the caller
// needing to check a flag at every call site.
func New(verbose bool) *Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.WarnLevel)
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// MethodFailed logs why a single method could not be optimized.
func (lg *Logger) MethodFailed(assembly, typeName, method string, err error) {
	lg.entry.WithFields(logrus.Fields{
		"assembly": assembly,
		"type":     typeName,
		"method":   method,
	}).Debug(err)
}

// AssemblyIOFailed logs a fatal read/write failure before the run aborts.
func (lg *Logger) AssemblyIOFailed(path string, err error) {
	lg.entry.WithField("path", path).Error(err)
}
