// Package cconlog provides the single verbose-toggle diagnostic sink the
// orchestrator logs through. There is no other logging configuration.
package cconlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger that discards everything below Error unless verbose
// is set, in which case it logs at Debug level to stderr with the field set
// the orchestrator expects (such as pid and hook) filled in by call sites via
// WithField/WithFields.
func New(verbose bool) *logrus.Entry {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{
		DisableColors:    false,
		FullTimestamp:    true,
		DisableTimestamp: false,
	}

	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.ErrorLevel)
	}

	return log.WithField("component", "ccon")
}
