// Package capability clears and then restores a named capability set
// across the effective, permitted, inheritable, and bounding sets, using
// the runc-lineage capability library rather than hand-rolled capset calls.
package capability

import (
	"strings"

	"github.com/moby/sys/capability"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

const capPrefix = "CAP_"

// allSets is the OR of the four sets the spec requires a named capability
// to be added to.
const allSets = capability.EFFECTIVE | capability.PERMITTED | capability.INHERITABLE | capability.BOUNDING

// Lookup resolves a "CAP_"-prefixed name (e.g. "CAP_SYS_ADMIN") to the
// library's Cap value by stripping the prefix and matching case-
// insensitively against each known capability's name.
func Lookup(name string) (capability.Cap, bool) {
	if len(name) < len(capPrefix) {
		return 0, false
	}
	want := strings.ToLower(strings.TrimPrefix(name, capPrefix))
	for _, c := range capability.List() {
		if strings.ToLower(c.String()) == want {
			return c, true
		}
	}
	return 0, false
}

// Apply clears the process's effective/permitted/inheritable/bounding sets
// and then adds exactly the named capabilities to all four, so the applied
// set equals the configured set. An unknown capability name is fatal: the
// spec notes the reference implementation treats this as a non-fatal
// warning while still (by bug) adding the failed lookup's zero value, and
// recommends implementers make it fatal instead.
func Apply(pid int, names []string) error {
	if len(names) == 0 {
		return nil
	}

	caps, err := capability.NewPid2(pid)
	if err != nil {
		return ccerr.New(ccerr.Privilege, "capability.NewPid2(%d): %v", pid, err)
	}
	if err := caps.Load(); err != nil {
		return ccerr.New(ccerr.Privilege, "load current capabilities: %v", err)
	}

	caps.Clear(capability.CAPS)
	caps.Clear(capability.BOUNDS)

	resolved := make([]capability.Cap, 0, len(names))
	for _, name := range names {
		c, ok := Lookup(name)
		if !ok {
			return ccerr.New(ccerr.Configuration, "unknown capability %q", name)
		}
		resolved = append(resolved, c)
	}
	caps.Set(allSets, resolved...)

	if err := caps.Apply(capability.CAPS | capability.BOUNDS); err != nil {
		return ccerr.New(ccerr.Privilege, "apply capabilities: %v", err)
	}
	return nil
}
