package orchestrator

import (
	"syscall"

	"github.com/oci-ccon/ccon/pkg/config"
	"github.com/oci-ccon/ccon/pkg/ns"
)

// cloneFlags starts from SIGCHLD and ORs in CLONE_NEW* for every
// namespaces.<name> entry that has no path (i.e. is to be created).
func cloneFlags(cfg *config.Config) uintptr {
	flags := uintptr(syscall.SIGCHLD)
	for name, entry := range cfg.Namespaces {
		if entry.IsJoin() {
			continue
		}
		if flag, ok := ns.FlagFor(name); ok {
			flags |= uintptr(flag)
		}
	}
	return flags
}
