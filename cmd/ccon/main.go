package main

import (
	"fmt"
	"os"

	"github.com/go-errors/errors"
	"github.com/integrii/flaggy"

	"github.com/oci-ccon/ccon/pkg/ccerr"
	"github.com/oci-ccon/ccon/pkg/cconlog"
	"github.com/oci-ccon/ccon/pkg/config"
	"github.com/oci-ccon/ccon/pkg/orchestrator"
)

const version = "ccon 0.2.0"

var (
	configPath   = "config.json"
	configString = ""
	verboseFlag  = false
)

func main() {
	if orchestrator.IsContainerInit(os.Args) {
		if err := orchestrator.ContainerMain(); err != nil {
			fmt.Fprintln(os.Stderr, describe(err))
			os.Exit(1)
		}
		// ContainerMain only returns on success by replacing the process
		// image further down its own call stack; reaching here with a nil
		// error means the process descriptor was empty.
		os.Exit(0)
	}

	flaggy.SetName("ccon")
	flaggy.SetDescription("a minimal container runtime core")
	flaggy.DefaultParser.AdditionalHelpPrepend = "https://github.com/oci-ccon/ccon"

	flaggy.String(&configPath, "c", "config", "path to the container config JSON document")
	flaggy.String(&configString, "s", "config-string", "the container config JSON document, inline")
	flaggy.Bool(&verboseFlag, "V", "verbose", "enable debug logging")
	flaggy.SetVersion(version)

	flaggy.Parse()

	log := cconlog.New(verboseFlag)

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Error("failed to load config")
		os.Exit(1)
	}

	exitCode, err := orchestrator.Host(cfg, log)
	if err != nil {
		log.Error(describe(err))
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// loadConfig honors --config-string as an override of --config, per §6.
func loadConfig() (*config.Config, error) {
	if configString != "" {
		return config.Parse([]byte(configString))
	}
	return config.Load(configPath)
}

// describe renders kind-tagged errors with their stack trace when one is
// available, the way the reference CLI surfaces go-errors traces.
func describe(err error) string {
	if kind, ok := ccerr.KindOf(err); ok {
		return fmt.Sprintf("[%s] %v", kind, err)
	}
	if withStack, ok := err.(*errors.Error); ok {
		return withStack.ErrorStack()
	}
	return err.Error()
}
