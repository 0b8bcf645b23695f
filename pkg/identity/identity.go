// Package identity applies the container process's uid, gid, and
// supplementary groups, in the order the kernel requires: gid before uid,
// so a privileged step is never attempted after the uid drop.
package identity

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/oci-ccon/ccon/pkg/ccerr"
)

// Spec is the subset of process.user the config may carry. A nil field
// means "leave as inherited"; the zero value of int is a valid uid/gid so
// pointers are used to distinguish absence from zero.
type Spec struct {
	UID            *int
	GID            *int
	AdditionalGids []int
}

// Apply sets gid, then supplementary groups, then uid. Each step is skipped
// if its field is absent. Because Linux credentials are per-thread, the
// calling goroutine is locked to its OS thread first and stays locked: a
// goroutine that changed identity must never be handed back to the
// scheduler for reuse by code that expects the pre-drop credentials.
func Apply(spec Spec) error {
	runtime.LockOSThread()

	if spec.GID != nil {
		if err := unix.Setgid(*spec.GID); err != nil {
			return ccerr.New(ccerr.Privilege, "setgid(%d): %v", *spec.GID, err)
		}
	}

	if len(spec.AdditionalGids) > 0 {
		if err := unix.Setgroups(spec.AdditionalGids); err != nil {
			return ccerr.New(ccerr.Privilege, "setgroups(%v): %v", spec.AdditionalGids, err)
		}
	}

	if spec.UID != nil {
		if err := unix.Setuid(*spec.UID); err != nil {
			return ccerr.New(ccerr.Privilege, "setuid(%d): %v", *spec.UID, err)
		}
	}

	return nil
}
